package browser_core

import (
	"context"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// fasthttpLauncher 轻量上下文实现
// 用 fasthttp 模拟浏览器会话：保持 Cookie、固定 UA
// 站点开启更强的指纹校验时，可以在这里扩展接真实浏览器的实现
type fasthttpLauncher struct {
}

func (l *fasthttpLauncher) Open(ctx context.Context) (Agent, error) {
	agent := &fasthttpAgent{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		cookies: make(map[string]string),
	}

	z.Debug("browser context opened", zap.String("targetUrl", targetUrl))

	return agent, nil
}

type fasthttpAgent struct {
	client  *fasthttp.Client
	cookies map[string]string
	closed  bool
}

func (a *fasthttpAgent) Execute(ctx context.Context, call Call) Outcome {
	if a.closed {
		return Outcome{Err: "browser context already closed"}
	}

	fastReq := fasthttp.AcquireRequest()
	fastResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(fastReq)
	defer fasthttp.ReleaseResponse(fastResp)

	fastReq.SetRequestURI(targetUrl + call.Path)
	fastReq.Header.SetMethod(call.Method)
	fastReq.Header.Set("User-Agent", userAgent)
	if len(call.Body) > 0 {
		fastReq.Header.SetContentType("application/json")
		fastReq.SetBody(call.Body)
	}
	for k, v := range call.Headers {
		fastReq.Header.Set(k, v)
	}
	for name, value := range a.cookies {
		fastReq.Header.SetCookie(name, value)
	}

	z.Debug("executing gateway call", zap.String("method", call.Method), zap.String("path", call.Path))

	// 发送请求，优先使用调用方的截止时间
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = a.client.DoDeadline(fastReq, fastResp, deadline)
	} else {
		err = a.client.Do(fastReq, fastResp)
	}
	if err != nil {
		z.Error("gateway call failed",
			zap.String("method", call.Method),
			zap.String("path", call.Path),
			zap.Error(err))
		return Outcome{Err: err.Error()}
	}

	// 捕获站点下发的Cookie，模拟浏览器的会话保持
	fastResp.Header.VisitAllCookie(func(key, value []byte) {
		c := fasthttp.AcquireCookie()
		defer fasthttp.ReleaseCookie(c)
		if err := c.ParseBytes(value); err == nil {
			a.cookies[string(c.Key())] = string(c.Value())
		}
	})

	// fasthttp 复用缓冲区，响应体必须拷贝出来
	body := make([]byte, len(fastResp.Body()))
	copy(body, fastResp.Body())

	z.Debug("gateway call completed",
		zap.String("method", call.Method),
		zap.String("path", call.Path),
		zap.Int("status", fastResp.StatusCode()))

	return Outcome{
		Status: fastResp.StatusCode(),
		Body:   body,
	}
}

func (a *fasthttpAgent) Cookie(name string) (string, bool) {
	value, ok := a.cookies[name]
	return value, ok
}

func (a *fasthttpAgent) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.cookies = nil

	z.Debug("browser context closed")
}
