package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
telegram:
  token: "123:abc"
  poll_timeout: 15s
logging:
  level: debug
  console: true
access:
  password: secret
sending:
  default_interval_minutes: 5
  default_batch_size: 10
  time_unit: 1s
storage:
  dir: ./data
reports:
  dir: ./reports
  format: xlsx
languages:
  default: pt-BR
  supported: [pt, en, zh]
`

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDecodeYAML(t *testing.T) {
	cfg, err := Decode("config.yaml", []byte(sampleYAML))
	require.NoError(t, err)
	require.Equal(t, "123:abc", cfg.Telegram.Token)
	require.Equal(t, 5, cfg.Sending.DefaultIntervalMinutes)
	require.Equal(t, []string{"pt", "en", "zh"}, cfg.Languages.Supported)

	d, err := cfg.Durations()
	require.NoError(t, err)
	require.Equal(t, 15*time.Second, d.PollTimeout)
	require.Equal(t, time.Second, d.TimeUnit)
	require.Equal(t, DefaultSendTimeout, d.SendTimeout)
	require.Equal(t, DefaultRetention, d.Retention)
	require.NoError(t, Validate(cfg))
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode("config.json", []byte(`{"telegram":{"token":"x"},"bogus":1}`))
	require.Error(t, err)

	_, err = Decode("config.json", []byte(`{"telegram":{"token":"x"}}{}`))
	require.Error(t, err)
}

func TestApplyEnvOverridesSecrets(t *testing.T) {
	cfg := &Config{}
	err := ApplyEnv(cfg, envMap(map[string]string{
		EnvToken:    " 999:zzz ",
		EnvPassword: "pw",
		EnvAdmin:    "42",
		EnvLanguage: "en",
	}))
	require.NoError(t, err)
	require.Equal(t, "999:zzz", cfg.Telegram.Token)
	require.Equal(t, "pw", cfg.Access.Password)
	require.Equal(t, int64(42), cfg.Telegram.AdminUserID)
	require.Equal(t, "en", cfg.Languages.Default)

	err = ApplyEnv(&Config{}, envMap(map[string]string{EnvAdmin: "abc"}))
	require.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{
		Sending:   SendingConfig{DefaultIntervalMinutes: 2000, DefaultBatchSize: 500, PausePoll: "soon"},
		Reports:   ReportsConfig{Format: "pdf", SweepSchedule: "not a schedule"},
		Languages: LanguagesConfig{Default: "fr"},
		Logging:   LoggingConfig{Level: "loud"},
	}
	err := Validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"telegram.token", "access.password", "logging.level",
		"default_interval_minutes", "default_batch_size", "sending.pause_poll",
		"reports.format", "reports.sweep_schedule", "languages.default",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %v", want, msg)
		}
	}
}

func TestManagerLoadAppliesEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := strings.Replace(sampleYAML, "password: secret", "password: from-file", 1)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	m := NewConfigManager(path)
	m.SetLookup(envMap(map[string]string{EnvPassword: "from-env"}))
	cfg, err := m.Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Access.Password)
	require.Same(t, cfg, m.Get())
}

func TestManagerPublishKeepsLatest(t *testing.T) {
	m := NewConfigManager("unused.yaml")
	ch := m.Subscribe(1)
	a, b := &Config{}, &Config{}
	m.publish(a)
	m.publish(b)
	if got := <-ch; got != b {
		t.Fatalf("expected latest config")
	}
	m.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	oldCfg, err := Decode("config.yaml", []byte(sampleYAML))
	require.NoError(t, err)
	newCfg := *oldCfg
	newCfg.Access.Password = "rotated"
	newCfg.Sending.DefaultBatchSize = 20

	sections, attrs := SummarizeConfigChange(oldCfg, &newCfg)
	require.Equal(t, []string{"access", "sending"}, sections)
	require.NotEmpty(t, attrs)

	sections, _ = SummarizeConfigChange(oldCfg, oldCfg)
	require.Empty(t, sections)
}
