package browser_core

import (
	"context"

	"go.uber.org/zap"
)

// Call 一次发往网关站点的调用
// Path 为站内相对路径，由上下文自己拼接目标站点地址
type Call struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
}

// Outcome 一次调用的结果
// 只要 HTTP 交换完成，无论状态码是多少都通过 Status/Body 返回，
// 只有传输层失败（连不上、超时）才写 Err，两者不会同时出现
type Outcome struct {
	Status int
	Body   []byte
	Err    string
}

// Failed 调用是否未能完成
func (o Outcome) Failed() bool {
	return o.Err != ""
}

// Agent 一个已打开的认证上下文
// 同一账号的所有网关调用都走同一个 Agent，Cookie 在上下文内自动保持
// Execute 不向外抛出任何异常，所有失败都体现在 Outcome 上
type Agent interface {
	Execute(ctx context.Context, call Call) Outcome
	Cookie(name string) (string, bool)
	Close()
}

// Launcher 上下文启动器，每个账号运行前打开一个独立上下文
type Launcher interface {
	Open(ctx context.Context) (Agent, error)
}

func NewLauncher() Launcher {
	switch platform {
	case "fasthttp":
		return &fasthttpLauncher{}
	default:
		z.Warn("browser platform is not supported", zap.String("platform", platform))
	}
	return nil
}
