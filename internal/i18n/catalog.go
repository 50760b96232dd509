package i18n

var catalog = map[Lang]map[string]string{
	PT: {
		"login_prompt":    "🔐 Por favor, insira a senha para acessar o sistema.",
		"login_incorrect": "❌ Senha incorreta! Tente novamente.",
		"login_blocked":   "🚫 Muitas tentativas incorretas. Acesso bloqueado temporariamente.",
		"login_success":   "✅ Login realizado com sucesso!",

		"upload_prompt":   "📥 Por favor, envie a planilha (.csv ou .xlsx) para iniciar o envio de mensagens.",
		"upload_existing": "⚠️ Já existe uma planilha carregada.\nDeseja:",
		"upload_replace":  "✅ Substituir pela nova",
		"upload_continue": "🔄 Continuar de onde parou",
		"upload_cancel":   "❌ Cancelar",
		"upload_success":  "✅ Planilha carregada com sucesso!",
		"upload_count":    "📄 {count} mensagens na fila.",
		"upload_error":    "❌ Erro ao processar planilha. Verifique o formato.",
		"upload_busy":     "⚠️ Há um envio em andamento. Pause ou cancele antes de enviar outra planilha.",

		"config_interval":    "⏱️ Informe o intervalo de envio (em minutos, 1 a 1440):",
		"config_batch":       "✉️ Quantas mensagens deseja enviar a cada ciclo? (1 a 100)",
		"config_summary":     "📄 Mensagens na fila: {count}\n⏱️ Intervalo: {interval} min\n✉️ Por ciclo: {batch}",
		"config_template":    "📝 Mensagem: {name}",
		"config_start":       "▶️ Iniciar envio",
		"config_reconfigure": "⚙️ Reconfigurar",
		"config_cancel":      "❌ Cancelar",

		"send_started":   "🚀 Envio iniciado.",
		"send_controls":  "📤 Envio em andamento.\n📄 Restantes: {count}",
		"send_success":   "✅ Mensagem enviada com sucesso para: {chat_id}",
		"send_error":     "⚠️ Erro ao enviar para: {chat_id}. Pulando para o próximo.",
		"send_paused":    "⏸️ Envio pausado.",
		"send_resumed":   "▶️ Envio retomado.",
		"send_cancelled": "❌ Envio cancelado.",
		"send_busy":      "⚠️ Já existe um envio em andamento.",

		"backup_detected": "🚀 Sistema detectou envio anterior inacabado.\nDeseja:",
		"backup_resume":   "🔄 Retomar de onde parou",
		"backup_cancel":   "❌ Cancelar",
		"backup_missing":  "ℹ️ Nenhum envio inacabado encontrado.",
		"backup_cleared":  "🗑️ Envio anterior descartado.",

		"completion_success":   "✅ Todas as mensagens foram enviadas com sucesso! 🎯",
		"completion_summary":   "📊 Total: {total}\n✅ Enviadas: {sent}\n⚠️ Falhas: {failed}",
		"completion_report":    "📥 Aqui está o relatório final.",
		"completion_new_sheet": "📢 Por favor, envie uma nova planilha para atualizar a fila de mensagens.",

		"btn_pause":     "⏸️ Pausar",
		"btn_resume":    "🔄 Retomar",
		"btn_back":      "⏪ Voltar ao Menu",
		"btn_cancel":    "❌ Cancelar",
		"btn_new_sheet": "📥 Enviar nova planilha",
		"btn_upload":    "📥 Enviar planilha",
		"btn_templates": "📝 Mensagens",
		"btn_loop":      "🔄 Loop infinito",
		"btn_language":  "🌍 Idioma",

		"error_invalid_file":   "❌ Arquivo inválido. Envie apenas .csv ou .xlsx",
		"error_legacy_xls":     "❌ Arquivos .xls antigos não são suportados. Salve a planilha como .xlsx e envie novamente.",
		"error_invalid_format": "❌ Formato da planilha inválido. Colunas necessárias: api_key, chat_id, mensagem",
		"error_invalid_number": "❌ Por favor, insira um número válido.",
		"error_general":        "❌ Ocorreu um erro inesperado. Tente novamente.",

		"status_processing":  "⏳ Processando...",
		"status_waiting":     "⏳ Aguardando próximo ciclo...",
		"status_queue_empty": "📭 Fila vazia. Envie uma nova planilha.",

		"main_menu": "🏠 <b>Menu principal</b>\n\nEscolha uma opção:",
		"help":      "ℹ️ /start – abrir o bot\n/menu – menu principal\n/language – alterar idioma",

		"cmd_start":    "Abrir o bot",
		"cmd_menu":     "Menu principal",
		"cmd_help":     "Ajuda",
		"cmd_language": "Alterar idioma",

		"admin_run_finished":  "📊 Envio finalizado para {user}\n✅ Enviadas: {sent}\n⚠️ Falhas: {failed}",
		"admin_run_cancelled": "🛑 Envio cancelado por {user}\n📄 Restantes: {remaining}",

		"template_menu":             "📝 <b>Gerenciar Mensagens</b>\n\nEscolha uma opção:",
		"create_template":           "➕ <b>Criar Nova Mensagem</b>\n\nVamos criar uma mensagem personalizada!",
		"edit_template":             "✏️ <b>Editar Mensagem: {name}</b>\n\nEscolha o que deseja editar:",
		"template_text_prompt":      "📝 <b>Editar Texto</b>\n\nEnvie o texto da mensagem:",
		"template_photo_prompt":     "🖼️ <b>Adicionar Foto</b>\n\nEnvie a foto que deseja incluir na mensagem:",
		"template_button_prompt":    "🔘 <b>Adicionar Botão</b>\n\nEnvie no formato:\n<code>Texto do Botão | https://link.com</code>",
		"template_name_prompt":      "💾 <b>Salvar Mensagem</b>\n\nDigite um nome para esta mensagem:",
		"template_saved":            "✅ Mensagem \"{name}\" salva com sucesso!",
		"template_deleted":          "🗑️ Mensagem \"{name}\" removida com sucesso!",
		"template_preview":          "👁️ <b>Visualização da Mensagem:</b>",
		"template_selected":         "✅ Mensagem \"{name}\" selecionada para envio!",
		"no_templates":              "📝 Nenhuma mensagem salva ainda.\n\nCrie sua primeira mensagem!",
		"template_selection_prompt": "📝 Escolha uma mensagem para usar no envio:",
		"no_template":               "📄 Usar mensagens da planilha",
		"no_template_selected":      "✅ Usando mensagens da planilha!",
		"template_empty":            "⚠️ Adicione um texto ou uma foto antes de salvar.",
		"template_invalid_name":     "❌ Nome inválido. Use até 40 caracteres, sem \":\".",
		"template_not_found":        "❌ Mensagem não encontrada.",
		"template_invalid_button":   "❌ Formato inválido. Use: <code>Texto do Botão | https://link.com</code>",
		"template_invalid_photo":    "❌ Envie uma foto ou um link http(s) de imagem.",
		"template_too_many_buttons": "⚠️ Limite de botões atingido.",
		"btn_tpl_new":               "➕ Nova mensagem",
		"btn_tpl_edit":              "✏️ Editar",
		"btn_tpl_delete":            "🗑️ Excluir",
		"btn_tpl_use":               "✅ Usar no envio",
		"btn_tpl_text":              "📝 Texto",
		"btn_tpl_photo":             "🖼️ Foto",
		"btn_tpl_button":            "🔘 Botão",
		"btn_tpl_clear":             "🧹 Limpar botões",
		"btn_tpl_save":              "💾 Salvar",
		"btn_tpl_discard":           "❌ Descartar",

		"loop_menu":             "🔄 <b>Loop Infinito</b>\n\nConfiguração de envio contínuo:",
		"loop_enabled":          "✅ Loop infinito ativado!\n\nAs mensagens serão enviadas continuamente.",
		"loop_disabled":         "⏹️ Loop infinito desativado.",
		"loop_interval_prompt":  "⚙️ <b>Configurar Intervalo</b>\n\nDigite o intervalo em minutos entre cada reinício:",
		"loop_status":           "📊 <b>Status do Loop:</b>\n\n🔄 Ativo: {status}\n⏱️ Intervalo: {interval} min\n📝 Mensagem: {template}",
		"loop_restart":          "🔄 Reiniciando envio automático...",
		"loop_finished_restart": "✅ Fila finalizada! Reiniciando em {interval} minutos...",
		"loop_finishing":        "⏹️ O loop será encerrado após o ciclo atual.",
		"loop_interval_saved":   "✅ Intervalo do loop definido para {interval} min.",
		"loop_yes":              "✅ Sim",
		"loop_no":               "❌ Não",
		"loop_sheet":            "planilha",
		"btn_loop_on":           "▶️ Ativar",
		"btn_loop_off":          "⏹️ Desativar",
		"btn_loop_interval":     "⚙️ Intervalo",
		"btn_loop_finish":       "🏁 Encerrar após o ciclo",

		"language_prompt": "🌍 Escolha o idioma:",
		"language_set":    "✅ Idioma atualizado.",
	},

	EN: {
		"login_prompt":    "🔐 Please enter the password to access the system.",
		"login_incorrect": "❌ Incorrect password! Try again.",
		"login_blocked":   "🚫 Too many incorrect attempts. Access temporarily blocked.",
		"login_success":   "✅ Login successful!",

		"upload_prompt":   "📥 Please send the spreadsheet (.csv or .xlsx) to start sending messages.",
		"upload_existing": "⚠️ A spreadsheet is already loaded.\nDo you want to:",
		"upload_replace":  "✅ Replace with new one",
		"upload_continue": "🔄 Continue where it stopped",
		"upload_cancel":   "❌ Cancel",
		"upload_success":  "✅ Spreadsheet loaded successfully!",
		"upload_count":    "📄 {count} messages queued.",
		"upload_error":    "❌ Error processing spreadsheet. Check the format.",
		"upload_busy":     "⚠️ A send is in progress. Pause or cancel it before uploading another spreadsheet.",

		"config_interval":    "⏱️ Enter the sending interval (in minutes, 1 to 1440):",
		"config_batch":       "✉️ How many messages do you want to send per cycle? (1 to 100)",
		"config_summary":     "📄 Messages in queue: {count}\n⏱️ Interval: {interval} min\n✉️ Per cycle: {batch}",
		"config_template":    "📝 Message: {name}",
		"config_start":       "▶️ Start sending",
		"config_reconfigure": "⚙️ Reconfigure",
		"config_cancel":      "❌ Cancel",

		"send_started":   "🚀 Sending started.",
		"send_controls":  "📤 Sending in progress.\n📄 Remaining: {count}",
		"send_success":   "✅ Message sent successfully to: {chat_id}",
		"send_error":     "⚠️ Error sending to: {chat_id}. Skipping to next.",
		"send_paused":    "⏸️ Sending paused.",
		"send_resumed":   "▶️ Sending resumed.",
		"send_cancelled": "❌ Sending cancelled.",
		"send_busy":      "⚠️ A send is already running.",

		"backup_detected": "🚀 System detected an unfinished previous send.\nDo you want to:",
		"backup_resume":   "🔄 Resume where it stopped",
		"backup_cancel":   "❌ Cancel",
		"backup_missing":  "ℹ️ No unfinished send found.",
		"backup_cleared":  "🗑️ Previous send discarded.",

		"completion_success":   "✅ All messages were sent successfully! 🎯",
		"completion_summary":   "📊 Total: {total}\n✅ Sent: {sent}\n⚠️ Failed: {failed}",
		"completion_report":    "📥 Here is the final report.",
		"completion_new_sheet": "📢 Please send a new spreadsheet to update the message queue.",

		"btn_pause":     "⏸️ Pause",
		"btn_resume":    "🔄 Resume",
		"btn_back":      "⏪ Back to Menu",
		"btn_cancel":    "❌ Cancel",
		"btn_new_sheet": "📥 Send new spreadsheet",
		"btn_upload":    "📥 Upload spreadsheet",
		"btn_templates": "📝 Messages",
		"btn_loop":      "🔄 Infinite loop",
		"btn_language":  "🌍 Language",

		"error_invalid_file":   "❌ Invalid file. Send only .csv or .xlsx",
		"error_legacy_xls":     "❌ Old .xls files are not supported. Save the sheet as .xlsx and send it again.",
		"error_invalid_format": "❌ Invalid spreadsheet format. Required columns: api_key, chat_id, mensagem",
		"error_invalid_number": "❌ Please enter a valid number.",
		"error_general":        "❌ An unexpected error occurred. Try again.",

		"status_processing":  "⏳ Processing...",
		"status_waiting":     "⏳ Waiting for next cycle...",
		"status_queue_empty": "📭 Queue empty. Send a new spreadsheet.",

		"main_menu": "🏠 <b>Main menu</b>\n\nChoose an option:",
		"help":      "ℹ️ /start – open the bot\n/menu – main menu\n/language – change language",

		"cmd_start":    "Open the bot",
		"cmd_menu":     "Main menu",
		"cmd_help":     "Help",
		"cmd_language": "Change language",

		"admin_run_finished":  "📊 Run finished for {user}\n✅ Sent: {sent}\n⚠️ Failed: {failed}",
		"admin_run_cancelled": "🛑 Run cancelled by {user}\n📄 Remaining: {remaining}",

		"template_menu":             "📝 <b>Manage Messages</b>\n\nChoose an option:",
		"create_template":           "➕ <b>Create New Message</b>\n\nLet's create a custom message!",
		"edit_template":             "✏️ <b>Edit Message: {name}</b>\n\nChoose what to edit:",
		"template_text_prompt":      "📝 <b>Edit Text</b>\n\nSend the message text:",
		"template_photo_prompt":     "🖼️ <b>Add Photo</b>\n\nSend the photo to include in the message:",
		"template_button_prompt":    "🔘 <b>Add Button</b>\n\nSend in format:\n<code>Button Text | https://link.com</code>",
		"template_name_prompt":      "💾 <b>Save Message</b>\n\nEnter a name for this message:",
		"template_saved":            "✅ Message \"{name}\" saved successfully!",
		"template_deleted":          "🗑️ Message \"{name}\" removed successfully!",
		"template_preview":          "👁️ <b>Message Preview:</b>",
		"template_selected":         "✅ Message \"{name}\" selected for sending!",
		"no_templates":              "📝 No saved messages yet.\n\nCreate your first message!",
		"template_selection_prompt": "📝 Choose a message to use for sending:",
		"no_template":               "📄 Use spreadsheet messages",
		"no_template_selected":      "✅ Using spreadsheet messages!",
		"template_empty":            "⚠️ Add a text or a photo before saving.",
		"template_invalid_name":     "❌ Invalid name. Use up to 40 characters, without \":\".",
		"template_not_found":        "❌ Message not found.",
		"template_invalid_button":   "❌ Invalid format. Use: <code>Button Text | https://link.com</code>",
		"template_invalid_photo":    "❌ Send a photo or an http(s) image link.",
		"template_too_many_buttons": "⚠️ Button limit reached.",
		"btn_tpl_new":               "➕ New message",
		"btn_tpl_edit":              "✏️ Edit",
		"btn_tpl_delete":            "🗑️ Delete",
		"btn_tpl_use":               "✅ Use for sending",
		"btn_tpl_text":              "📝 Text",
		"btn_tpl_photo":             "🖼️ Photo",
		"btn_tpl_button":            "🔘 Button",
		"btn_tpl_clear":             "🧹 Clear buttons",
		"btn_tpl_save":              "💾 Save",
		"btn_tpl_discard":           "❌ Discard",

		"loop_menu":             "🔄 <b>Infinite Loop</b>\n\nContinuous sending configuration:",
		"loop_enabled":          "✅ Infinite loop activated!\n\nMessages will be sent continuously.",
		"loop_disabled":         "⏹️ Infinite loop disabled.",
		"loop_interval_prompt":  "⚙️ <b>Configure Interval</b>\n\nEnter interval in minutes between each restart:",
		"loop_status":           "📊 <b>Loop Status:</b>\n\n🔄 Active: {status}\n⏱️ Interval: {interval} min\n📝 Message: {template}",
		"loop_restart":          "🔄 Restarting automatic sending...",
		"loop_finished_restart": "✅ Queue finished! Restarting in {interval} minutes...",
		"loop_finishing":        "⏹️ The loop will stop after the current cycle.",
		"loop_interval_saved":   "✅ Loop interval set to {interval} min.",
		"loop_yes":              "✅ Yes",
		"loop_no":               "❌ No",
		"loop_sheet":            "spreadsheet",
		"btn_loop_on":           "▶️ Enable",
		"btn_loop_off":          "⏹️ Disable",
		"btn_loop_interval":     "⚙️ Interval",
		"btn_loop_finish":       "🏁 Stop after cycle",

		"language_prompt": "🌍 Choose your language:",
		"language_set":    "✅ Language updated.",
	},

	ZH: {
		"login_prompt":    "🔐 请输入密码以访问系统。",
		"login_incorrect": "❌ 密码错误！请重试。",
		"login_blocked":   "🚫 错误尝试次数过多。访问暂时被阻止。",
		"login_success":   "✅ 登录成功！",

		"upload_prompt":   "📥 请发送电子表格（.csv 或 .xlsx）开始发送消息。",
		"upload_existing": "⚠️ 已加载电子表格。\n您想要：",
		"upload_replace":  "✅ 替换为新的",
		"upload_continue": "🔄 从停止的地方继续",
		"upload_cancel":   "❌ 取消",
		"upload_success":  "✅ 电子表格加载成功！",
		"upload_count":    "📄 队列中有 {count} 条消息。",
		"upload_error":    "❌ 处理电子表格时出错。请检查格式。",
		"upload_busy":     "⚠️ 正在发送中。请先暂停或取消，再上传新的电子表格。",

		"config_interval":    "⏱️ 输入发送间隔（分钟，1 到 1440）：",
		"config_batch":       "✉️ 每个周期要发送多少条消息？（1 到 100）",
		"config_summary":     "📄 队列中的消息：{count}\n⏱️ 间隔：{interval} 分钟\n✉️ 每周期：{batch}",
		"config_template":    "📝 消息：{name}",
		"config_start":       "▶️ 开始发送",
		"config_reconfigure": "⚙️ 重新配置",
		"config_cancel":      "❌ 取消",

		"send_started":   "🚀 已开始发送。",
		"send_controls":  "📤 正在发送。\n📄 剩余：{count}",
		"send_success":   "✅ 消息成功发送至：{chat_id}",
		"send_error":     "⚠️ 发送至 {chat_id} 时出错。跳到下一个。",
		"send_paused":    "⏸️ 发送已暂停。",
		"send_resumed":   "▶️ 发送已恢复。",
		"send_cancelled": "❌ 发送已取消。",
		"send_busy":      "⚠️ 已有发送正在进行。",

		"backup_detected": "🚀 系统检测到未完成的先前发送。\n您想要：",
		"backup_resume":   "🔄 从停止的地方恢复",
		"backup_cancel":   "❌ 取消",
		"backup_missing":  "ℹ️ 没有未完成的发送。",
		"backup_cleared":  "🗑️ 已放弃先前的发送。",

		"completion_success":   "✅ 所有消息发送成功！🎯",
		"completion_summary":   "📊 总计：{total}\n✅ 已发送：{sent}\n⚠️ 失败：{failed}",
		"completion_report":    "📥 这是最终报告。",
		"completion_new_sheet": "📢 请发送新的电子表格以更新消息队列。",

		"btn_pause":     "⏸️ 暂停",
		"btn_resume":    "🔄 恢复",
		"btn_back":      "⏪ 返回菜单",
		"btn_cancel":    "❌ 取消",
		"btn_new_sheet": "📥 发送新电子表格",
		"btn_upload":    "📥 上传电子表格",
		"btn_templates": "📝 消息",
		"btn_loop":      "🔄 无限循环",
		"btn_language":  "🌍 语言",

		"error_invalid_file":   "❌ 无效文件。仅发送 .csv 或 .xlsx",
		"error_legacy_xls":     "❌ 不支持旧版 .xls 文件。请将表格另存为 .xlsx 后重新发送。",
		"error_invalid_format": "❌ 电子表格格式无效。必需列：api_key, chat_id, mensagem",
		"error_invalid_number": "❌ 请输入有效数字。",
		"error_general":        "❌ 发生意外错误。请重试。",

		"status_processing":  "⏳ 处理中...",
		"status_waiting":     "⏳ 等待下一个周期...",
		"status_queue_empty": "📭 队列为空。发送新的电子表格。",

		"main_menu": "🏠 <b>主菜单</b>\n\n选择一个选项：",
		"help":      "ℹ️ /start – 打开机器人\n/menu – 主菜单\n/language – 更改语言",

		"cmd_start":    "打开机器人",
		"cmd_menu":     "主菜单",
		"cmd_help":     "帮助",
		"cmd_language": "更改语言",

		"admin_run_finished":  "📊 {user} 的发送已完成\n✅ 已发送：{sent}\n⚠️ 失败：{failed}",
		"admin_run_cancelled": "🛑 {user} 取消了发送\n📄 剩余：{remaining}",

		"template_menu":             "📝 <b>管理消息</b>\n\n选择一个选项：",
		"create_template":           "➕ <b>创建新消息</b>\n\n让我们创建一个自定义消息！",
		"edit_template":             "✏️ <b>编辑消息：{name}</b>\n\n选择要编辑的内容：",
		"template_text_prompt":      "📝 <b>编辑文本</b>\n\n发送消息文本：",
		"template_photo_prompt":     "🖼️ <b>添加照片</b>\n\n发送要包含在消息中的照片：",
		"template_button_prompt":    "🔘 <b>添加按钮</b>\n\n按格式发送：\n<code>按钮文本 | https://link.com</code>",
		"template_name_prompt":      "💾 <b>保存消息</b>\n\n为此消息输入名称：",
		"template_saved":            "✅ 消息\"{name}\"保存成功！",
		"template_deleted":          "🗑️ 消息\"{name}\"删除成功！",
		"template_preview":          "👁️ <b>消息预览：</b>",
		"template_selected":         "✅ 消息\"{name}\"已选择发送！",
		"no_templates":              "📝 还没有保存的消息。\n\n创建您的第一条消息！",
		"template_selection_prompt": "📝 选择要用于发送的消息：",
		"no_template":               "📄 使用电子表格消息",
		"no_template_selected":      "✅ 使用电子表格消息！",
		"template_empty":            "⚠️ 保存前请添加文本或照片。",
		"template_invalid_name":     "❌ 名称无效。最多 40 个字符，不能包含 \":\"。",
		"template_not_found":        "❌ 未找到消息。",
		"template_invalid_button":   "❌ 格式无效。请使用：<code>按钮文本 | https://link.com</code>",
		"template_invalid_photo":    "❌ 请发送照片或 http(s) 图片链接。",
		"template_too_many_buttons": "⚠️ 已达到按钮上限。",
		"btn_tpl_new":               "➕ 新消息",
		"btn_tpl_edit":              "✏️ 编辑",
		"btn_tpl_delete":            "🗑️ 删除",
		"btn_tpl_use":               "✅ 用于发送",
		"btn_tpl_text":              "📝 文本",
		"btn_tpl_photo":             "🖼️ 照片",
		"btn_tpl_button":            "🔘 按钮",
		"btn_tpl_clear":             "🧹 清除按钮",
		"btn_tpl_save":              "💾 保存",
		"btn_tpl_discard":           "❌ 放弃",

		"loop_menu":             "🔄 <b>无限循环</b>\n\n连续发送配置：",
		"loop_enabled":          "✅ 无限循环已激活！\n\n消息将连续发送。",
		"loop_disabled":         "⏹️ 无限循环已禁用。",
		"loop_interval_prompt":  "⚙️ <b>配置间隔</b>\n\n输入每次重启之间的间隔（分钟）：",
		"loop_status":           "📊 <b>循环状态：</b>\n\n🔄 激活：{status}\n⏱️ 间隔：{interval} 分钟\n📝 消息：{template}",
		"loop_restart":          "🔄 重新开始自动发送...",
		"loop_finished_restart": "✅ 队列完成！{interval} 分钟后重新开始...",
		"loop_finishing":        "⏹️ 循环将在当前周期结束后停止。",
		"loop_interval_saved":   "✅ 循环间隔已设置为 {interval} 分钟。",
		"loop_yes":              "✅ 是",
		"loop_no":               "❌ 否",
		"loop_sheet":            "电子表格",
		"btn_loop_on":           "▶️ 启用",
		"btn_loop_off":          "⏹️ 禁用",
		"btn_loop_interval":     "⚙️ 间隔",
		"btn_loop_finish":       "🏁 本周期后停止",

		"language_prompt": "🌍 选择语言：",
		"language_set":    "✅ 语言已更新。",
	},
}
