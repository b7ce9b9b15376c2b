package gateway_core

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestReconcileDeleteAndCreate(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodDelete, "/api/token/7", okReply(""))
	agent.push(http.MethodPost, "/api/token/", okReply(""))
	agent.push(http.MethodPost, "/api/token/", okReply(""))
	agent.push(http.MethodGet, "/api/token/", okReply(`[
		{"id":11,"key":"sk-a","name":"SALE_pack","remain_quota":1000000},
		{"id":12,"key":"sk-b","name":"default","remain_quota":500000}
	]`))

	client := NewClient(agent, "alice")
	intents := []TokenIntent{
		{Id: 7, IsDeleted: true},
		{Name: "SALE_pack", RemainQuota: 1000000},
		{},
	}
	out := client.ReconcileTokens(context.Background(), intents)

	if out.Deleted != 1 || out.Created != 2 {
		t.Fatalf("deleted = %d created = %d, want 1 / 2", out.Deleted, out.Created)
	}
	if len(out.Candidates) != 1 || out.Candidates[0].Name != "SALE_pack" || out.Candidates[0].RemainQuota != 1000000 {
		t.Fatalf("unexpected candidates: %+v", out.Candidates)
	}
	if len(out.Tokens) != 2 {
		t.Fatalf("tokens = %d, want 2", len(out.Tokens))
	}

	var created []map[string]any
	for _, call := range agent.calls {
		if call.Method == http.MethodPost && call.Path == "/api/token/" {
			var body map[string]any
			if err := json.Unmarshal(call.Body, &body); err != nil {
				t.Fatalf("bad create body: %v", err)
			}
			created = append(created, body)
		}
	}
	if len(created) != 2 {
		t.Fatalf("create calls = %d, want 2", len(created))
	}

	// 未命名意图按默认名和默认额度新建
	if created[1]["name"] != "default" {
		t.Errorf("default name not applied: %v", created[1])
	}
	if created[1]["remain_quota"].(float64) != 500000 {
		t.Errorf("default quota not applied: %v", created[1])
	}

	// 新建的令牌永不过期
	if created[0]["expired_time"].(float64) != -1 {
		t.Errorf("created token should never expire: %v", created[0])
	}
}

func TestReconcileCreatesEvenWhenMarkedDeleted(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodPost, "/api/token/", okReply(""))
	agent.push(http.MethodGet, "/api/token/", okReply(`[{"id":1,"key":"sk","name":"x","remain_quota":500000}]`))

	client := NewClient(agent, "alice")
	out := client.ReconcileTokens(context.Background(), []TokenIntent{{Name: "x", IsDeleted: true}})

	if out.Created != 1 || out.Deleted != 0 {
		t.Fatalf("created = %d deleted = %d, want 1 / 0", out.Created, out.Deleted)
	}
	for _, call := range agent.calls {
		if call.Method == http.MethodDelete {
			t.Fatalf("no delete call expected for intents without id, got %s", call.Path)
		}
	}
}

func TestReconcileCreateFailureIsNotACandidate(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodPost, "/api/token/", failReply("quota exhausted"))
	agent.push(http.MethodGet, "/api/token/", okReply(`[{"id":1,"key":"sk","name":"old","remain_quota":1}]`))

	client := NewClient(agent, "alice")
	out := client.ReconcileTokens(context.Background(), []TokenIntent{{Name: "SALE_x", RemainQuota: 10}})

	if out.Created != 0 || len(out.Candidates) != 0 {
		t.Fatalf("failed create should not produce candidates: %+v", out)
	}
}

func TestReconcileBootstrapCreatesFallbackToken(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodGet, "/api/token/", okReply(`[]`))
	agent.push(http.MethodPost, "/api/token/", okReply(""))
	agent.push(http.MethodGet, "/api/token/", okReply(`[{"id":3,"key":"sk-d","name":"default","unlimited_quota":true}]`))

	client := NewClient(agent, "alice")
	out := client.ReconcileTokens(context.Background(), nil)

	if out.Created != 1 {
		t.Fatalf("created = %d, want 1", out.Created)
	}
	if len(out.Tokens) != 1 || !out.Tokens[0].UnlimitedQuota {
		t.Fatalf("unexpected tokens after bootstrap: %+v", out.Tokens)
	}

	var body map[string]any
	for _, call := range agent.calls {
		if call.Method == http.MethodPost && call.Path == "/api/token/" {
			if err := json.Unmarshal(call.Body, &body); err != nil {
				t.Fatalf("bad create body: %v", err)
			}
		}
	}
	if body["name"] != "default" || body["unlimited_quota"] != true {
		t.Errorf("fallback token should be the unlimited default: %v", body)
	}
}

func TestReconcileBootstrapSkipsWhenTokensExist(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodGet, "/api/token/", okReply(`[{"id":3,"key":"sk","name":"default","remain_quota":1}]`))

	client := NewClient(agent, "alice")
	out := client.ReconcileTokens(context.Background(), nil)

	if out.Created != 0 {
		t.Fatalf("created = %d, want 0", out.Created)
	}
	for _, call := range agent.calls {
		if call.Method == http.MethodPost {
			t.Fatal("no create call expected when account already has tokens")
		}
	}
}

func TestReconcileSupplement(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodGet, "/api/token/", okReply(`[{"id":5,"key":"sk-e","name":"t","remain_quota":100}]`))
	agent.push(http.MethodPut, "/api/token/", okReply(`{"id":5,"key":"sk-e","name":"t","remain_quota":150}`))

	client := NewClient(agent, "alice")
	out := client.ReconcileTokens(context.Background(), []TokenIntent{{Id: 5, SupplementQuota: 50}})

	if out.Supplemented != 1 {
		t.Fatalf("supplemented = %d, want 1", out.Supplemented)
	}
	if out.Tokens[0].RemainQuota != 150 {
		t.Errorf("remainQuota = %d, want 150", out.Tokens[0].RemainQuota)
	}
	if out.Tokens[0].SupplementQuota != 0 {
		t.Errorf("supplementQuota should not leak into the projection, got %d", out.Tokens[0].SupplementQuota)
	}

	// 回写请求携带的是补充后的完整记录
	for _, call := range agent.calls {
		if call.Method == http.MethodPut {
			var body map[string]any
			if err := json.Unmarshal(call.Body, &body); err != nil {
				t.Fatalf("bad update body: %v", err)
			}
			if body["remain_quota"].(float64) != 150 {
				t.Errorf("update should carry the supplemented quota, got %v", body["remain_quota"])
			}
			if body["key"] != "sk-e" {
				t.Errorf("update should carry the full record, got %v", body)
			}
		}
	}
}

func TestReconcileSupplementUsesConfirmedQuota(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodGet, "/api/token/", okReply(`[{"id":5,"key":"sk-e","name":"t","remain_quota":100}]`))
	agent.push(http.MethodPut, "/api/token/", okReply(`{"id":5,"key":"sk-e","name":"t","remain_quota":149}`))

	client := NewClient(agent, "alice")
	out := client.ReconcileTokens(context.Background(), []TokenIntent{{Id: 5, SupplementQuota: 50}})

	// 网关对额度做了修正，以回传值为准
	if out.Tokens[0].RemainQuota != 149 {
		t.Errorf("remainQuota = %d, want the gateway-confirmed 149", out.Tokens[0].RemainQuota)
	}
}

func TestReconcileSupplementSkipsMissingToken(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodGet, "/api/token/", okReply(`[{"id":5,"key":"sk-e","name":"t","remain_quota":100}]`))

	client := NewClient(agent, "alice")
	out := client.ReconcileTokens(context.Background(), []TokenIntent{{Id: 99, SupplementQuota: 50}})

	if out.Supplemented != 0 {
		t.Fatalf("supplemented = %d, want 0", out.Supplemented)
	}
	for _, call := range agent.calls {
		if call.Method == http.MethodPut {
			t.Fatal("no update call expected for a token missing on the gateway")
		}
	}
}

func TestReconcileStopsWhenListUnavailable(t *testing.T) {
	agent := newScriptAgent()
	agent.push(http.MethodDelete, "/api/token/7", okReply(""))

	client := NewClient(agent, "alice")
	out := client.ReconcileTokens(context.Background(), []TokenIntent{
		{Id: 7, IsDeleted: true},
		{Id: 5, SupplementQuota: 50},
	})

	// 列表拉不到时带着已产生的结果返回，不再继续补充额度
	if out.Deleted != 1 {
		t.Fatalf("deleted = %d, want 1", out.Deleted)
	}
	if out.Supplemented != 0 || len(out.Tokens) != 0 {
		t.Fatalf("reconcile should stop after list failure, got %+v", out)
	}
}
