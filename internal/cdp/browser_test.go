package cdp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajsharma/tab_cookies/internal/config"
)

func fakeChrome(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json/version":
			w.Write([]byte(`{"Browser": "Chrome/126.0.0.0", "webSocketDebuggerUrl": "ws://127.0.0.1:1/devtools/browser/x"}`))
		case "/json":
			w.Write([]byte(`[
				{"id": "A", "type": "page", "title": "Active", "url": "https://example.com/path"},
				{"id": "W", "type": "service_worker", "url": "https://example.com/sw.js"},
				{"id": "B", "type": "page", "title": "Other", "url": "chrome://newtab/"}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestBrowserListTabs(t *testing.T) {
	server := fakeChrome(t)
	b := NewBrowser(serverPort(server), time.Second, nil)

	tabs, err := b.ListTabs(context.Background())
	require.NoError(t, err)
	require.Len(t, tabs, 2)
	assert.Equal(t, "A", tabs[0].TargetID)
	assert.Equal(t, "B", tabs[1].TargetID)
}

func TestBrowserInfo(t *testing.T) {
	server := fakeChrome(t)
	b := NewBrowser(serverPort(server), time.Second, nil)

	info, err := b.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Chrome/126.0.0.0", info.Browser)
}

func TestBrowserCookiesWithoutChrome(t *testing.T) {
	b := NewBrowser("59998", 500*time.Millisecond, nil)

	got, err := b.Cookies(context.Background(), "example.com")
	assert.Error(t, err)
	assert.Nil(t, got)
}

// cdpCookieServer serves /json/version and a browser websocket that answers
// Storage.getCookies with cookies. Other methods get a CDP error reply. Every
// reply is preceded by a message with neither id nor method, which chromedp
// reports through its error logger.
func cdpCookieServer(t *testing.T, cookies []map[string]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	var wsURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json/version":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"Browser":              "Chrome/126.0.0.0",
				"webSocketDebuggerUrl": wsURL,
			})
		case "/devtools/browser/fake":
			conn, _, _, err := ws.UpgradeHTTP(r, w)
			if err != nil {
				return
			}
			defer conn.Close()
			for {
				data, err := wsutil.ReadClientText(conn)
				if err != nil {
					return
				}
				var req struct {
					ID     int64  `json:"id"`
					Method string `json:"method"`
				}
				if err := json.Unmarshal(data, &req); err != nil {
					return
				}

				resp := map[string]any{"id": req.ID}
				if req.Method == "Storage.getCookies" {
					calls.Add(1)
					resp["result"] = map[string]any{"cookies": cookies}
				} else {
					resp["error"] = map[string]any{"code": -32601, "message": "'" + req.Method + "' wasn't found"}
				}
				if err := wsutil.WriteServerText(conn, []byte(`{}`)); err != nil {
					return
				}
				out, _ := json.Marshal(resp)
				if err := wsutil.WriteServerText(conn, out); err != nil {
					return
				}
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	wsURL = "ws://" + strings.TrimPrefix(server.URL, "http://") + "/devtools/browser/fake"
	t.Cleanup(server.Close)
	return server, &calls
}

func cdpCookie(name, value, domain string) map[string]any {
	return map[string]any{
		"name":         name,
		"value":        value,
		"domain":       domain,
		"path":         "/",
		"expires":      -1,
		"size":         len(name) + len(value),
		"httpOnly":     false,
		"secure":       true,
		"session":      true,
		"priority":     "Medium",
		"sourceScheme": "Secure",
		"sourcePort":   443,
	}
}

func TestBrowserCookiesDomainMatch(t *testing.T) {
	server, calls := cdpCookieServer(t, []map[string]any{
		cdpCookie("host_only", "1", "example.com"),
		cdpCookie("shared", "2", ".example.com"),
		cdpCookie("app_only", "3", "app.example.com"),
		cdpCookie("unrelated", "4", ".other.test"),
	})

	tests := []struct {
		host string
		want []string
	}{
		{host: "example.com", want: []string{"host_only", "shared"}},
		{host: "app.example.com", want: []string{"shared", "app_only"}},
		{host: "deep.app.example.com", want: []string{"shared"}},
		{host: "other.test", want: []string{"unrelated"}},
		{host: "nowhere.test", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			b := NewBrowser(serverPort(server), 5*time.Second, nil)

			got, err := b.Cookies(context.Background(), tt.host)
			require.NoError(t, err)

			names := make([]string, 0, len(got))
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
	assert.Equal(t, int32(len(tests)), calls.Load())
}

func TestBrowserCookiesDialError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json/version":
			w.Write([]byte(`{"webSocketDebuggerUrl": "ws://127.0.0.1:1/devtools/browser/gone"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	b := NewBrowser(serverPort(server), time.Second, nil)
	_, err := b.Cookies(context.Background(), "example.com")
	assert.ErrorContains(t, err, "failed to connect to browser")
}

func TestBrowserCookiesLogsThroughZap(t *testing.T) {
	server, _ := cdpCookieServer(t, []map[string]any{cdpCookie("id", "1", "example.com")})
	core, logs := observer.New(zap.DebugLevel)
	b := NewBrowser(serverPort(server), 5*time.Second, zap.New(core))

	_, err := b.Cookies(context.Background(), "example.com")
	require.NoError(t, err)

	entries := logs.FilterMessage("read browser cookies").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["visible"])

	// chromedp's own diagnostics go to the same logger
	assert.GreaterOrEqual(t, logs.FilterMessageSnippet("ignoring malformed incoming message").Len(), 1)
}

func TestStartWithoutLaunch(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ChromePort = "9555"

	b, err := Start(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "9555", b.port)
	assert.Nil(t, b.chromeProcess)
	assert.NoError(t, b.Close())
}

func TestStartLaunchMissingExecutable(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AutoLaunch = true
	cfg.ChromePath = t.TempDir() + "/missing-chrome"

	_, err := Start(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "failed to launch chrome")
}
