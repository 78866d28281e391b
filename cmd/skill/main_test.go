package main

import (
	"bitbucket.org/sotavant/caster-skill/internal/notifier/mock"
	"bitbucket.org/sotavant/caster-skill/internal/skill"
	"bytes"
	"compress/gzip"
	"github.com/go-resty/resty/v2"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

const appID = "amzn1.ask.skill.caster"

func TestWebhook(t *testing.T) {
	ctrl := gomock.NewController(t)
	n := mock.NewMockNotifier(ctrl)

	n.EXPECT().
		Notify(gomock.Any(), "Netflix", "Stranger Things").
		Times(1)

	appInstance := newApp(skill.New(skill.Config{ApplicationID: appID}, n))

	handler := http.HandlerFunc(appInstance.webhook)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	testCases := []struct {
		name         string
		method       string
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "method_get",
			method:       http.MethodGet,
			expectedCode: http.StatusMethodNotAllowed,
			expectedBody: "",
		},
		{
			name:         "method_put",
			method:       http.MethodPut,
			expectedCode: http.StatusMethodNotAllowed,
			expectedBody: "",
		},
		{
			name:         "method_delete",
			method:       http.MethodDelete,
			expectedCode: http.StatusMethodNotAllowed,
			expectedBody: "",
		},
		{
			name:         "method_post_without_body",
			method:       http.MethodPost,
			expectedCode: http.StatusInternalServerError,
			expectedBody: "",
		},
		{
			name:         "method_post_unsupported_type",
			method:       http.MethodPost,
			body:         `{"request": {"type": "idunno", "requestId": "r1"}, "session": {"application": {"applicationId": "amzn1.ask.skill.caster"}}, "version": "1.0"}`,
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: "",
		},
		{
			name:         "method_post_intent_without_intent",
			method:       http.MethodPost,
			body:         `{"request": {"type": "IntentRequest", "requestId": "r1"}, "session": {"application": {"applicationId": "amzn1.ask.skill.caster"}}, "version": "1.0"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: "",
		},
		{
			name:         "method_post_bad_timestamp",
			method:       http.MethodPost,
			body:         `{"request": {"type": "LaunchRequest", "requestId": "r1", "timestamp": "yesterday"}, "session": {"application": {"applicationId": "amzn1.ask.skill.caster"}}, "version": "1.0"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: "",
		},
		{
			name:         "method_post_other_application",
			method:       http.MethodPost,
			body:         `{"request": {"type": "LaunchRequest", "requestId": "r1"}, "session": {"application": {"applicationId": "amzn1.ask.skill.other"}}, "version": "1.0"}`,
			expectedCode: http.StatusForbidden,
			expectedBody: "",
		},
		{
			name:         "method_post_launch",
			method:       http.MethodPost,
			body:         `{"request": {"type": "LaunchRequest", "requestId": "r1", "timestamp": "2026-10-19T10:00:00Z"}, "session": {"new": true, "sessionId": "s1", "application": {"applicationId": "amzn1.ask.skill.caster"}}, "version": "1.0"}`,
			expectedCode: http.StatusOK,
			expectedBody: `"type":"SSML","ssml":"<speak>Welcome to Caster\..*"shouldEndSession":false`,
		},
		{
			name:         "method_post_one_shot",
			method:       http.MethodPost,
			body:         `{"request": {"type": "IntentRequest", "requestId": "r2", "intent": {"name": "OneShot", "slots": {"Service": {"name": "Service", "value": "Netflix"}, "Query": {"name": "Query", "value": "Stranger Things"}}}}, "session": {"sessionId": "s1", "application": {"applicationId": "amzn1.ask.skill.caster"}}, "version": "1.0"}`,
			expectedCode: http.StatusOK,
			expectedBody: `"text":"Searching Netflix for Stranger Things\."`,
		},
		{
			name:         "method_post_one_shot_without_query",
			method:       http.MethodPost,
			body:         `{"request": {"type": "IntentRequest", "requestId": "r3", "intent": {"name": "OneShot", "slots": {"Service": {"name": "Service", "value": "Hulu"}, "Query": {"name": "Query"}}}}, "session": {"sessionId": "s1", "application": {"applicationId": "amzn1.ask.skill.caster"}}, "version": "1.0"}`,
			expectedCode: http.StatusOK,
			expectedBody: `What would you like to watch on Hulu\?.*"shouldEndSession":false`,
		},
		{
			name:         "method_post_unknown_intent",
			method:       http.MethodPost,
			body:         `{"request": {"type": "IntentRequest", "requestId": "r4", "intent": {"name": "AMAZON.PauseIntent"}}, "session": {"sessionId": "s1", "application": {"applicationId": "amzn1.ask.skill.caster"}}, "version": "1.0"}`,
			expectedCode: http.StatusOK,
			expectedBody: `can't help with that.*"shouldEndSession":true`,
		},
		{
			name:         "method_post_session_ended",
			method:       http.MethodPost,
			body:         `{"request": {"type": "SessionEndedRequest", "requestId": "r5", "reason": "USER_INITIATED"}, "session": {"sessionId": "s1", "application": {"applicationId": "amzn1.ask.skill.caster"}}, "version": "1.0"}`,
			expectedCode: http.StatusOK,
			expectedBody: `^\{"version":"1\.0","response":\{"shouldEndSession":true\}\}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := resty.New().R()
			r.Method = tc.method
			r.URL = srv.URL

			if len(tc.body) > 0 {
				r.SetHeader("Content-Type", "application/json")
				r.SetBody(tc.body)
			}

			resp, err := r.Send()
			assert.NoError(t, err, "error making request")

			assert.Equal(t, tc.expectedCode, resp.StatusCode(), "код ответа не совпадает")
			if tc.expectedBody != "" {
				assert.Regexp(t, tc.expectedBody, string(resp.Body()))
			}
		})
	}
}

func TestGzipCompression(t *testing.T) {
	appInstance := newApp(skill.New(skill.Config{}, nil))

	handler := gzipMiddleware(appInstance.webhook)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	requestBody := `{
		"request": {
			"type": "IntentRequest",
			"requestId": "r1",
			"intent": {"name": "AMAZON.StopIntent"}
		},
		"session": {"sessionId": "s1"},
		"version": "1.0"
	}`

	successBody := `{
		"response": {
			"outputSpeech": {"type": "PlainText", "text": "Goodbye"},
			"shouldEndSession": true
		},
		"version": "1.0"
	}`

	t.Run("sends_gzip", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		zb := gzip.NewWriter(buf)
		_, err := zb.Write([]byte(requestBody))
		require.NoError(t, err)
		err = zb.Close()
		require.NoError(t, err)

		r := httptest.NewRequest("POST", srv.URL, buf)
		r.RequestURI = ""
		r.Header.Set("Content-Encoding", "gzip")
		r.Header.Set("Accept-Encoding", "0")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		defer func(Body io.ReadCloser) {
			err := Body.Close()
			require.NoError(t, err)
		}(resp.Body)

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.JSONEq(t, successBody, string(b))
	})

	t.Run("accept_gzip", func(t *testing.T) {
		buf := bytes.NewBufferString(requestBody)
		r := httptest.NewRequest("POST", srv.URL, buf)
		r.RequestURI = ""
		r.Header.Set("Accept-Encoding", "gzip")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

		defer resp.Body.Close()

		zr, err := gzip.NewReader(resp.Body)
		require.NoError(t, err)

		b, err := io.ReadAll(zr)
		require.NoError(t, err)

		require.JSONEq(t, successBody, string(b))
	})

	t.Run("accept_gzip_error_status", func(t *testing.T) {
		buf := bytes.NewBufferString(`{"request": {"type": "idunno", "requestId": "r1"}, "version": "1.0"}`)
		r := httptest.NewRequest("POST", srv.URL, buf)
		r.RequestURI = ""
		r.Header.Set("Accept-Encoding", "gzip")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Empty(t, resp.Header.Get("Content-Encoding"))

		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Empty(t, b)
	})
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := skill.NewMetrics(reg)
	d := skill.New(skill.Config{}, nil, skill.WithMetrics(metrics))

	srv := httptest.NewServer(newRouter(newApp(d), reg))
	defer srv.Close()

	client := resty.New().SetBaseURL(srv.URL)

	resp, err := client.R().Get("/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = client.R().Get("/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode())

	resp, err = client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"request": {"type": "IntentRequest", "requestId": "r1", "intent": {"name": "AMAZON.HelpIntent"}}, "session": {"sessionId": "s1"}, "version": "1.0"}`).
		Post("/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, resp.String(), "Netflix, Hulu, and HBO Go")

	resp, err = client.R().Get("/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Contains(t, resp.String(), `caster_requests_total{intent="AMAZON.HelpIntent",type="IntentRequest"} 1`)
}
