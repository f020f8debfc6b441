package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/marcel-receptionist/cmd/mainconfig"
	"github.com/wolfman30/marcel-receptionist/internal/app/bootstrap"
	appconfig "github.com/wolfman30/marcel-receptionist/internal/config"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel).With("runtime", "lambda")
	if cfg.SessionBackend != "redis" {
		logger.Warn("session store is per-instance; set SESSION_BACKEND=redis so calls survive cold starts")
	}

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadOptionalAWSConfig(ctx, cfg)
	if err != nil {
		panic(err)
	}
	app, err := bootstrap.Build(ctx, cfg, bootstrap.Options{Logger: logger, AWS: awsCfg})
	if err != nil {
		panic(err)
	}

	srv := &adapter{handler: app.Handler, flush: app.Dispatcher.Wait}
	lambda.Start(srv.handle)
}

// adapter serves API Gateway v2 events through the same router as the HTTP
// server. flush runs before each response so call records are written
// before the execution environment freezes.
type adapter struct {
	handler http.Handler
	flush   func()
}

func (a *adapter) handle(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := toRequest(ctx, evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	w := newBufferedResponse()
	a.handler.ServeHTTP(w, req)
	if a.flush != nil {
		a.flush()
	}
	return w.event(), nil
}

func toRequest(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body, err := decodeBody(evt)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == "" {
		method = http.MethodPost
	}
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	if path == "" {
		path = "/"
	}
	target := path
	if qs := strings.TrimSpace(evt.RawQueryString); qs != "" {
		target += "?" + qs
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if len(evt.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(evt.Cookies, "; "))
	}

	// Twilio signs the public URL, so the router must see the original host.
	req.Host = strings.TrimSpace(evt.RequestContext.DomainName)
	if req.Host == "" {
		req.Host = headerValue(evt.Headers, "host")
	}
	if req.Header.Get("X-Forwarded-Proto") == "" {
		req.Header.Set("X-Forwarded-Proto", "https")
	}
	req.RemoteAddr = strings.TrimSpace(evt.RequestContext.HTTP.SourceIP)
	req.RequestURI = target
	return req, nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// bufferedResponse collects what the router writes into a Lambda response.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: http.Header{}}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedResponse) event() events.APIGatewayV2HTTPResponse {
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	out := events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       b.body.String(),
		Headers:    map[string]string{},
	}
	for k, v := range b.header {
		if k == "Set-Cookie" {
			out.Cookies = append(out.Cookies, v...)
			continue
		}
		out.Headers[strings.ToLower(k)] = strings.Join(v, ",")
	}
	return out
}
