package module_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	modkit "evalview/internal/modkit"
	"evalview/internal/platform/config"
	phttp "evalview/internal/platform/net/http"
	"evalview/internal/services/logview/domain"
	"evalview/internal/services/logview/module"
)

func TestFromConfig_Defaults(t *testing.T) {
	o := module.FromConfig(config.New().Prefix("EVTEST_"))

	if o.MaxSampleBytes != 100<<20 {
		t.Fatalf("MaxSampleBytes = %d", o.MaxSampleBytes)
	}
	if o.Concurrency != 5 {
		t.Fatalf("Concurrency = %d", o.Concurrency)
	}
	if o.Timeout != 30*time.Second || o.OpenTimeout != 30*time.Second {
		t.Fatalf("timeouts = %v / %v", o.Timeout, o.OpenTimeout)
	}
	if o.CacheSize != 16 || o.CacheTTL != 5*time.Minute {
		t.Fatalf("cache = %d / %v", o.CacheSize, o.CacheTTL)
	}
	if o.UserAgent != "evalview-reader" {
		t.Fatalf("UserAgent = %q", o.UserAgent)
	}
	if o.AuthToken != "" {
		t.Fatalf("AuthToken = %q, want open by default", o.AuthToken)
	}
}

func TestFromConfig_EnvOverrides(t *testing.T) {
	t.Setenv("EVTEST_READER_MAX_SAMPLE_BYTES", "1MiB")
	t.Setenv("EVTEST_READER_CONCURRENCY", "9")
	t.Setenv("EVTEST_READER_TIMEOUT", "5s")
	t.Setenv("EVTEST_READER_CACHE_SIZE", "3")
	t.Setenv("EVTEST_READER_USER_AGENT", "custom-agent")
	t.Setenv("EVTEST_AUTH_TOKEN", "sekrit")

	o := module.FromConfig(config.New().Prefix("EVTEST_"))

	if o.MaxSampleBytes != 1<<20 {
		t.Fatalf("MaxSampleBytes = %d", o.MaxSampleBytes)
	}
	if o.Concurrency != 9 || o.Timeout != 5*time.Second || o.CacheSize != 3 {
		t.Fatalf("options = %+v", o)
	}
	if o.UserAgent != "custom-agent" || o.AuthToken != "sekrit" {
		t.Fatalf("options = %+v", o)
	}
}

func TestModule_Identity(t *testing.T) {
	m := module.New(modkit.Deps{Cfg: config.New().Prefix("EVTEST_")})

	if m.Name() != "logs" {
		t.Fatalf("Name = %q", m.Name())
	}
	if _, ok := m.Ports().(domain.ReaderPort); !ok {
		t.Fatalf("Ports() does not satisfy domain.ReaderPort: %T", m.Ports())
	}
}

func TestModule_MountsUnderPrefixWithAuth(t *testing.T) {
	t.Setenv("EVTEST_AUTH_TOKEN", "sekrit")

	m := module.New(modkit.Deps{Cfg: config.New().Prefix("EVTEST_")})
	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)
	ts := httptest.NewServer(r.Mux())
	t.Cleanup(ts.Close)

	// purge touches only the cache, so no log host is needed
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/logs/purge", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated purge: status = %d, want 401", resp.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated purge: status = %d, want 200", resp.StatusCode)
	}
	var env struct {
		Data struct {
			Dropped int `json:"dropped"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Dropped != 0 {
		t.Fatalf("dropped = %d on a cold cache", env.Data.Dropped)
	}
}
