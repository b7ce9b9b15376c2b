package gateway_core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/laixingyu123/ay4/cmn/browser_core"

	"go.uber.org/zap"
)

// assumeTransferApplied 奖励划转接口的回执并不可靠，实测即使回执失败划转也已入账，
// 为避免下次运行重复划转，这里无论回执如何都按已入账处理本地余额。
// 风险：若网关某次确实没有入账，本地余额会虚高一次。
const assumeTransferApplied = true

// Client 一个账号在一次运行期间的网关会话
// 会话随运行创建和丢弃，不跨运行复用
type Client struct {
	agent    browser_core.Agent
	username string

	sessionId string
	apiUser   string

	// 登录响应附带的账户信息，作为 FetchProfile 失败时的降级数据
	loginProfile *AccountProfile
}

func NewClient(agent browser_core.Agent, username string) *Client {
	return &Client{
		agent:    agent,
		username: username,
	}
}

// Login 登录并建立会话
// 登录失败对该账号是致命的，返回错误后调用方应结束该账号的本次运行
func (c *Client) Login(ctx context.Context, password string) error {
	body := map[string]string{
		"username": c.username,
		"password": password,
	}

	reply, ok := c.callGateway(ctx, http.MethodPost, "/api/user/login", body)
	if !ok {
		return fmt.Errorf("login call failed for %s", c.username)
	}
	if !reply.Success {
		e := fmt.Errorf("gateway rejected login for %s: %s", c.username, reply.Message)
		z.Error(e.Error())
		return e
	}

	var profile AccountProfile
	err := json.Unmarshal(reply.Data, &profile)
	if err != nil {
		e := fmt.Errorf("failed to unmarshal login profile for %s: %w", c.username, err)
		z.Error(e.Error())
		return e
	}
	if profile.Id == 0 {
		e := fmt.Errorf("login reply carries no account id for %s", c.username)
		z.Error(e.Error())
		return e
	}

	// 会话Cookie由站点在登录响应中下发
	sessionId, ok := c.agent.Cookie(sessionCookieName)
	if !ok || sessionId == "" {
		e := fmt.Errorf("session cookie not found after login for %s", c.username)
		z.Error(e.Error())
		return e
	}

	c.sessionId = sessionId
	c.apiUser = strconv.FormatInt(profile.Id, 10)
	c.loginProfile = &profile

	z.Info("login succeeded",
		zap.String("username", c.username),
		zap.String("apiUser", c.apiUser))

	return nil
}

// ClaimDailyReward 领取每日签到奖励，失败不影响后续流程
func (c *Client) ClaimDailyReward(ctx context.Context) bool {
	reply, ok := c.callGateway(ctx, http.MethodPost, "/api/user/check_in", nil)
	if !ok {
		z.Warn("daily reward claim failed", zap.String("username", c.username))
		return false
	}
	if !reply.Success {
		// 已领取过也会走到这里，属于正常情况
		z.Warn("daily reward not granted",
			zap.String("username", c.username),
			zap.String("message", reply.Message))
		return false
	}

	z.Info("daily reward claimed", zap.String("username", c.username))
	return true
}

// FetchProfile 拉取账户信息，失败时返回 nil，由调用方降级使用登录附带的信息
func (c *Client) FetchProfile(ctx context.Context) *AccountProfile {
	reply, ok := c.callGateway(ctx, http.MethodGet, "/api/user/self", nil)
	if !ok {
		return nil
	}
	if !reply.Success {
		z.Warn("gateway rejected profile fetch",
			zap.String("username", c.username),
			zap.String("message", reply.Message))
		return nil
	}

	var profile AccountProfile
	err := json.Unmarshal(reply.Data, &profile)
	if err != nil {
		z.Error("failed to unmarshal profile",
			zap.String("username", c.username),
			zap.Error(err))
		return nil
	}

	z.Info("profile fetched",
		zap.String("username", c.username),
		zap.Int64("quota", profile.Quota),
		zap.Int64("affQuota", profile.AffQuota))

	return &profile
}

// LoginProfile 登录响应附带的账户信息副本，可能缺少部分字段
func (c *Client) LoginProfile() *AccountProfile {
	if c.loginProfile == nil {
		return nil
	}
	profile := *c.loginProfile
	return &profile
}

// SettleBonus 把邀请奖励余额划转进主余额
// 无论划转回执如何，本地都把奖励折算进主余额并清零，见 assumeTransferApplied
func (c *Client) SettleBonus(ctx context.Context, profile *AccountProfile) {
	if profile == nil || profile.AffQuota <= 0 {
		return
	}

	body := map[string]int64{
		"quota": profile.AffQuota,
	}

	confirmed := false
	reply, ok := c.callGateway(ctx, http.MethodPost, "/api/user/aff_transfer", body)
	if ok && reply.Success {
		confirmed = true
		z.Info("bonus transferred",
			zap.String("username", c.username),
			zap.Int64("affQuota", profile.AffQuota))
	} else {
		msg := ""
		if reply != nil {
			msg = reply.Message
		}
		z.Warn("bonus transfer unconfirmed, folding into balance anyway",
			zap.String("username", c.username),
			zap.Int64("affQuota", profile.AffQuota),
			zap.String("message", msg))
	}

	if confirmed || assumeTransferApplied {
		profile.Quota += profile.AffQuota
		profile.AffQuota = 0
	}
}

// listTokens 拉取当前账号的全部令牌
func (c *Client) listTokens(ctx context.Context) ([]tokenWire, error) {
	reply, ok := c.callGateway(ctx, http.MethodGet, "/api/token/", nil)
	if !ok {
		return nil, fmt.Errorf("token list call failed for %s", c.username)
	}
	if !reply.Success {
		return nil, fmt.Errorf("gateway rejected token list for %s: %s", c.username, reply.Message)
	}

	var tokens []tokenWire
	err := json.Unmarshal(reply.Data, &tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal token list for %s: %w", c.username, err)
	}

	return tokens, nil
}

// authHeaders 登录后每个请求都要带操作账号请求头
func (c *Client) authHeaders() map[string]string {
	if c.apiUser == "" {
		return nil
	}
	return map[string]string{
		apiUserHeader: c.apiUser,
	}
}

// callGateway 发送一次网关调用并解析通用响应外壳
// 传输失败、非 200 状态、响应体无法解析时返回 ok 为 false，原因都已记录日志
func (c *Client) callGateway(ctx context.Context, method, path string, body any) (*gatewayReply, bool) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			z.Error("failed to marshal gateway request",
				zap.String("username", c.username),
				zap.String("path", path),
				zap.Error(err))
			return nil, false
		}
	}

	outcome := c.agent.Execute(ctx, browser_core.Call{
		Method:  method,
		Path:    path,
		Headers: c.authHeaders(),
		Body:    payload,
	})
	if outcome.Failed() {
		z.Error("gateway call did not complete",
			zap.String("username", c.username),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("error", outcome.Err))
		return nil, false
	}

	var reply gatewayReply
	err := json.Unmarshal(outcome.Body, &reply)
	if err != nil {
		z.Error("failed to unmarshal gateway reply",
			zap.String("username", c.username),
			zap.String("path", path),
			zap.Int("status", outcome.Status),
			zap.Error(err))
		return nil, false
	}

	if outcome.Status != http.StatusOK {
		z.Warn("gateway returned non-200 status",
			zap.String("username", c.username),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", outcome.Status),
			zap.String("message", reply.Message))
		return &reply, false
	}

	return &reply, true
}
