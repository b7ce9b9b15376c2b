package gateway_core

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/laixingyu123/ay4/cmn/browser_core"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	z = zap.NewNop()
	resalePrefix = "SALE_"
	quotaPerUnit = 500000
	os.Exit(m.Run())
}

// scriptAgent 按 "方法 路径" 匹配预置响应，同一路径的多个响应按序消费
// 没有预置响应的调用按传输失败处理
type scriptAgent struct {
	queues  map[string][]browser_core.Outcome
	cookies map[string]string
	calls   []browser_core.Call
	closed  int
}

func newScriptAgent() *scriptAgent {
	return &scriptAgent{
		queues:  make(map[string][]browser_core.Outcome),
		cookies: make(map[string]string),
	}
}

func (a *scriptAgent) push(method, path string, outcome browser_core.Outcome) {
	key := method + " " + path
	a.queues[key] = append(a.queues[key], outcome)
}

func (a *scriptAgent) Execute(_ context.Context, call browser_core.Call) browser_core.Outcome {
	a.calls = append(a.calls, call)
	key := call.Method + " " + call.Path
	queue := a.queues[key]
	if len(queue) == 0 {
		return browser_core.Outcome{Err: "no scripted reply for " + key}
	}
	a.queues[key] = queue[1:]
	return queue[0]
}

func (a *scriptAgent) Cookie(name string) (string, bool) {
	v, ok := a.cookies[name]
	return v, ok
}

func (a *scriptAgent) Close() {
	a.closed++
}

func okReply(data string) browser_core.Outcome {
	body := `{"success":true,"message":""}`
	if data != "" {
		body = `{"success":true,"message":"","data":` + data + `}`
	}
	return browser_core.Outcome{Status: 200, Body: []byte(body)}
}

func failReply(message string) browser_core.Outcome {
	return browser_core.Outcome{Status: 200, Body: []byte(`{"success":false,"message":"` + message + `"}`)}
}

func TestLogin(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodPost, "/api/user/login", okReply(`{"id":42,"username":"alice","quota":100,"aff_quota":7}`))
	agent.cookies["session"] = "sess-1"

	client := NewClient(agent, "alice")
	err := client.Login(context.Background(), "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if client.apiUser != "42" {
		t.Errorf("apiUser = %q, want %q", client.apiUser, "42")
	}
	if client.sessionId != "sess-1" {
		t.Errorf("sessionId = %q, want %q", client.sessionId, "sess-1")
	}

	profile := client.LoginProfile()
	if profile == nil || profile.Id != 42 || profile.AffQuota != 7 {
		t.Fatalf("unexpected login profile: %+v", profile)
	}

	// 登录后的每个调用都要带操作账号请求头
	agent.push(http.MethodPost, "/api/user/check_in", okReply(""))
	client.ClaimDailyReward(context.Background())
	last := agent.calls[len(agent.calls)-1]
	if last.Headers[apiUserHeader] != "42" {
		t.Errorf("missing %s header on authed call: %v", apiUserHeader, last.Headers)
	}
}

func TestLoginRejected(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodPost, "/api/user/login", failReply("密码错误"))

	client := NewClient(agent, "alice")
	err := client.Login(context.Background(), "bad")
	if err == nil {
		t.Fatal("Login should fail when gateway rejects credentials")
	}
}

func TestLoginWithoutSessionCookie(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodPost, "/api/user/login", okReply(`{"id":42,"username":"alice"}`))

	client := NewClient(agent, "alice")
	err := client.Login(context.Background(), "secret")
	if err == nil {
		t.Fatal("Login should fail when session cookie is missing")
	}
}

func TestLoginWithoutAccountId(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodPost, "/api/user/login", okReply(`{"username":"alice"}`))
	agent.cookies["session"] = "sess-1"

	client := NewClient(agent, "alice")
	err := client.Login(context.Background(), "secret")
	if err == nil {
		t.Fatal("Login should fail when reply carries no account id")
	}
}

func TestClaimDailyReward(t *testing.T) {
	agent := newScriptAgent()
	client := NewClient(agent, "alice")

	agent.push(http.MethodPost, "/api/user/check_in", okReply(""))
	if !client.ClaimDailyReward(context.Background()) {
		t.Error("ClaimDailyReward should report success")
	}

	// 当日已领取时网关返回业务失败
	agent.push(http.MethodPost, "/api/user/check_in", failReply("今日已签到"))
	if client.ClaimDailyReward(context.Background()) {
		t.Error("ClaimDailyReward should report failure when already checked in")
	}
}

func TestFetchProfileFallsBackToLoginProfile(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodPost, "/api/user/login", okReply(`{"id":9,"username":"bob","quota":55}`))
	agent.cookies["session"] = "sess-9"

	client := NewClient(agent, "bob")
	if err := client.Login(context.Background(), "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	agent.push(http.MethodGet, "/api/user/self", failReply("server busy"))
	if profile := client.FetchProfile(context.Background()); profile != nil {
		t.Fatalf("FetchProfile should return nil on gateway rejection, got %+v", profile)
	}

	fallback := client.LoginProfile()
	if fallback == nil || fallback.Quota != 55 {
		t.Fatalf("unexpected login fallback profile: %+v", fallback)
	}

	// 返回的是副本，调用方的改动不影响内部留存
	fallback.Quota = 0
	if client.loginProfile.Quota != 55 {
		t.Error("LoginProfile should return a copy")
	}
}

func TestSettleBonusConfirmed(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodPost, "/api/user/aff_transfer", okReply(""))
	client := NewClient(agent, "alice")

	profile := &AccountProfile{Quota: 100, AffQuota: 30}
	client.SettleBonus(context.Background(), profile)
	if profile.Quota != 130 || profile.AffQuota != 0 {
		t.Errorf("quota = %d affQuota = %d, want 130 / 0", profile.Quota, profile.AffQuota)
	}
}

func TestSettleBonusFoldsWithoutAck(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodPost, "/api/user/aff_transfer", failReply("transfer busy"))
	client := NewClient(agent, "alice")

	// 网关没有确认划转，余额照样折算，避免下次运行重复划转
	profile := &AccountProfile{Quota: 100, AffQuota: 30}
	client.SettleBonus(context.Background(), profile)
	if profile.Quota != 130 || profile.AffQuota != 0 {
		t.Errorf("quota = %d affQuota = %d, want 130 / 0", profile.Quota, profile.AffQuota)
	}
}

func TestSettleBonusFoldsOnTransportFailure(t *testing.T) {
	agent := newScriptAgent()
	client := NewClient(agent, "alice")

	profile := &AccountProfile{Quota: 10, AffQuota: 5}
	client.SettleBonus(context.Background(), profile)
	if profile.Quota != 15 || profile.AffQuota != 0 {
		t.Errorf("quota = %d affQuota = %d, want 15 / 0", profile.Quota, profile.AffQuota)
	}
}

func TestSettleBonusSkipsWithoutBonus(t *testing.T) {
	agent := newScriptAgent()
	client := NewClient(agent, "alice")

	profile := &AccountProfile{Quota: 100, AffQuota: 0}
	client.SettleBonus(context.Background(), profile)
	if len(agent.calls) != 0 {
		t.Errorf("no transfer call expected, got %d calls", len(agent.calls))
	}
	if profile.Quota != 100 {
		t.Errorf("quota should stay at 100, got %d", profile.Quota)
	}

	client.SettleBonus(context.Background(), nil)
}
