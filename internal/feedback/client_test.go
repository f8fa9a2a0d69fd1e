package feedback

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func replyWith(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "test-model",
		Timeout: time.Second,
		Logger:  quietLogger(),
	})
	return c, calls
}

var sampleRequest = Request{DurationMinutes: 45, Subject: "Calculus", Level: 3}

func TestGenerateSuccess(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body generateRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) || !assert.Len(t, body.Contents, 1) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Contains(t, body.Contents[0].Parts[0].Text, `"Calculus"`)
		assert.Contains(t, body.Contents[0].Parts[0].Text, "45-minute")
		assert.Equal(t, "application/json", body.GenerationConfig.ResponseMimeType)

		_, _ = io.WriteString(w, replyWith(`{"message":"Critical hit on calculus!","type":"victory"}`))
	})

	fb, err := c.Generate(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, "Critical hit on calculus!", fb.Message)
	assert.Equal(t, TypeVictory, fb.Type)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateStripsCodeFences(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, replyWith("```json\n{\"message\":\"Keep grinding\",\"type\":\"TIP\"}\n```"))
	})

	fb, err := c.Generate(context.Background(), sampleRequest)
	require.NoError(t, err)
	assert.Equal(t, Feedback{Message: "Keep grinding", Type: TypeTip}, fb)
}

func TestGenerateWithFallbackOnServerError(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"code":500,"message":"internal"}}`)
	})

	_, err := c.Generate(context.Background(), sampleRequest)
	assert.Error(t, err)

	fb, ok := c.GenerateWithFallback(context.Background(), sampleRequest)
	assert.True(t, ok)
	assert.Equal(t, Fallback(), fb)
	assert.Equal(t, TypeVictory, fb.Type)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateWithFallbackOnMalformedReply(t *testing.T) {
	cases := map[string]string{
		"not json":     replyWith("sure! here you go"),
		"empty":        replyWith(`{"message":"  ","type":"tip"}`),
		"unknown type": replyWith(`{"message":"hi","type":"bragging"}`),
		"no candidate": `{"candidates":[]}`,
		"garbage":      `<html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			})
			fb, ok := c.GenerateWithFallback(context.Background(), sampleRequest)
			assert.True(t, ok)
			assert.Equal(t, Fallback(), fb)
		})
	}
}

func TestNoCredentialsMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "  ", BaseURL: srv.URL, Logger: quietLogger()})
	assert.False(t, c.Enabled())

	_, err := c.Generate(context.Background(), sampleRequest)
	assert.ErrorIs(t, err, ErrNoCredentials)

	_, ok := c.GenerateWithFallback(context.Background(), sampleRequest)
	assert.False(t, ok)
	assert.Equal(t, int32(0), calls.Load())

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
}

func TestGenerateTimesOut(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	fb, ok := c.GenerateWithFallback(ctx, sampleRequest)
	assert.True(t, ok)
	assert.Equal(t, Fallback(), fb)
}

func TestParseType(t *testing.T) {
	for _, s := range []string{"encouragement", " Victory ", "TIP"} {
		got, ok := ParseType(s)
		assert.True(t, ok, s)
		assert.True(t, got.IsValid(), s)
	}
	_, ok := ParseType("taunt")
	assert.False(t, ok)
}
