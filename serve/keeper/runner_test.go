package keeper

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/laixingyu123/ay4/cmn"
	"github.com/laixingyu123/ay4/cmn/browser_core"
	"github.com/laixingyu123/ay4/cmn/gateway_core"
)

func TestMain(m *testing.M) {
	cmn.InitLogger(false)
	gateway_core.Init()
	z = cmn.GetLogger()
	pacingMin = 0
	pacingMax = 0
	os.Exit(m.Run())
}

// stubAgent 按 "方法 路径" 匹配预置响应，每个响应只消费一次
// panicPath 非空时命中该路径的调用直接崩溃，用来模拟意外错误
type stubAgent struct {
	replies   map[string][]browser_core.Outcome
	cookies   map[string]string
	panicPath string
	closed    int
}

func newStubAgent() *stubAgent {
	return &stubAgent{
		replies: make(map[string][]browser_core.Outcome),
		cookies: make(map[string]string),
	}
}

func (a *stubAgent) push(method, path, body string) {
	key := method + " " + path
	a.replies[key] = append(a.replies[key], browser_core.Outcome{Status: 200, Body: []byte(body)})
}

func (a *stubAgent) Execute(_ context.Context, call browser_core.Call) browser_core.Outcome {
	if a.panicPath != "" && call.Path == a.panicPath {
		panic("agent exploded on " + call.Path)
	}
	key := call.Method + " " + call.Path
	queue := a.replies[key]
	if len(queue) == 0 {
		return browser_core.Outcome{Err: "no scripted reply for " + key}
	}
	a.replies[key] = queue[1:]
	return queue[0]
}

func (a *stubAgent) Cookie(name string) (string, bool) {
	v, ok := a.cookies[name]
	return v, ok
}

func (a *stubAgent) Close() {
	a.closed++
}

// happyAgent 预置一个账号完整跑通所需的全部响应
func happyAgent(id int64, username string) *stubAgent {
	agent := newStubAgent()
	agent.cookies["session"] = "sess"
	agent.push("POST", "/api/user/login",
		fmt.Sprintf(`{"success":true,"data":{"id":%d,"username":"%s","quota":100}}`, id, username))
	agent.push("POST", "/api/user/check_in", `{"success":true}`)
	agent.push("GET", "/api/user/self",
		fmt.Sprintf(`{"success":true,"data":{"id":%d,"username":"%s","quota":100}}`, id, username))
	agent.push("GET", "/api/token/", `{"success":true,"data":[{"id":1,"key":"sk-live","name":"default","remain_quota":7}]}`)
	return agent
}

type stubLauncher struct {
	agents []browser_core.Agent
	err    error
	opens  int
}

func (l *stubLauncher) Open(_ context.Context) (browser_core.Agent, error) {
	if l.err != nil {
		return nil, l.err
	}
	if l.opens >= len(l.agents) {
		return nil, fmt.Errorf("no more scripted agents")
	}
	agent := l.agents[l.opens]
	l.opens++
	return agent, nil
}

func TestRunAllIsolatesFailures(t *testing.T) {
	good1 := happyAgent(1, "u1")
	bad := newStubAgent()
	bad.cookies["session"] = "sess"
	bad.push("POST", "/api/user/login", `{"success":false,"message":"密码错误"}`)
	good2 := happyAgent(3, "u3")

	launcher := &stubLauncher{agents: []browser_core.Agent{good1, bad, good2}}
	runner := NewRunner(launcher, nil)

	accounts := []Account{
		{Username: "u1", Password: "p"},
		{Username: "u2", Password: "p"},
		{Username: "u3", Password: "p"},
	}
	results := runner.RunAll(context.Background(), accounts)

	if len(results) != 3 {
		t.Fatalf("results = %d, want one per account", len(results))
	}
	if !results[0].Success || !results[2].Success {
		t.Errorf("healthy accounts should succeed: %+v", results)
	}
	if !results[0].RewardClaimed {
		t.Error("daily reward should be claimed on the happy path")
	}
	if results[1].Success || results[1].ErrorMsg == "" {
		t.Errorf("failed account should carry an error message: %+v", results[1])
	}
	if results[1].Username != "u2" {
		t.Errorf("result order should follow account order, got %q", results[1].Username)
	}

	// 每个账号的浏览器上下文都恰好关闭一次
	for i, agent := range []*stubAgent{good1, bad, good2} {
		if agent.closed != 1 {
			t.Errorf("agent %d closed %d times, want exactly once", i, agent.closed)
		}
	}
}

func TestRunOneClosesAgentOnPanic(t *testing.T) {
	agent := happyAgent(1, "u1")
	agent.panicPath = "/api/token/"

	launcher := &stubLauncher{agents: []browser_core.Agent{agent}}
	runner := NewRunner(launcher, nil)

	result := runner.runOne(context.Background(), Account{Username: "u1", Password: "p"})
	if result.Success {
		t.Fatal("panicking run should be reported as failure")
	}
	if result.ErrorMsg == "" || result.Profile != nil {
		t.Errorf("panic result should carry an error and no profile: %+v", result)
	}
	if agent.closed != 1 {
		t.Errorf("agent closed %d times, want exactly once", agent.closed)
	}
}

func TestRunOneLauncherFailure(t *testing.T) {
	launcher := &stubLauncher{err: fmt.Errorf("browser pool exhausted")}
	runner := NewRunner(launcher, nil)

	result := runner.runOne(context.Background(), Account{Username: "u1", Password: "p"})
	if result.Success || result.ErrorMsg == "" {
		t.Fatalf("launcher failure should fail the account: %+v", result)
	}
}

func TestRunOneWithoutLauncher(t *testing.T) {
	runner := NewRunner(nil, nil)

	result := runner.runOne(context.Background(), Account{Username: "u1"})
	if result.Success {
		t.Fatal("missing launcher should fail the account")
	}
}

func TestRunOneFallsBackToLoginProfile(t *testing.T) {
	agent := newStubAgent()
	agent.cookies["session"] = "sess"
	agent.push("POST", "/api/user/login", `{"success":true,"data":{"id":9,"username":"u9","quota":77}}`)
	agent.push("POST", "/api/user/check_in", `{"success":true}`)
	agent.push("GET", "/api/user/self", `{"success":false,"message":"busy"}`)
	agent.push("GET", "/api/token/", `{"success":true,"data":[{"id":1,"key":"sk","name":"default","remain_quota":7}]}`)

	launcher := &stubLauncher{agents: []browser_core.Agent{agent}}
	runner := NewRunner(launcher, nil)

	result := runner.runOne(context.Background(), Account{Username: "u9", Password: "p"})
	if !result.Success {
		t.Fatalf("run should succeed on the login-embedded profile: %+v", result)
	}
	if result.Profile == nil || result.Profile.Quota != 77 {
		t.Fatalf("expected login-embedded profile, got %+v", result.Profile)
	}
}
