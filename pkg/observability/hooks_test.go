package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Webhook hooks
	w := NoopWebhookHooks{}
	w.OnEventReceived(ctx, "pull_request")
	w.OnEventHandled(ctx, "pull_request", time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "repo")
	c.OnCacheMiss(ctx, "issue")
	c.OnCacheSet(ctx, "repo", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.github.com", "/user/repos")
	h.OnResponse(ctx, "GET", "api.github.com", "/user/repos", 200, time.Second)
	h.OnError(ctx, "GET", "api.github.com", "/user/repos", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Webhook().(NoopWebhookHooks); !ok {
		t.Error("Webhook() should return NoopWebhookHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customWebhook := &testWebhookHooks{}
	SetWebhookHooks(customWebhook)
	if Webhook() != customWebhook {
		t.Error("SetWebhookHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Webhook().(NoopWebhookHooks); !ok {
		t.Error("Reset() should restore NoopWebhookHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testWebhookHooks{}
	SetWebhookHooks(custom)

	// Setting nil should be ignored
	SetWebhookHooks(nil)

	if Webhook() != custom {
		t.Error("SetWebhookHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testWebhookHooks struct{ NoopWebhookHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
