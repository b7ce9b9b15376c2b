package gateway_core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ReconcileTokens 令牌对账
// 把调用方声明的令牌期望状态与网关上的实际令牌列表对齐，依次执行：
//  1. 删除：Id 非零且标记删除的意图，逐个发删除调用
//  2. 新建：Id 为零的意图，逐个发新建调用，命中上架前缀的记为待上架令牌
//  3. 兜底：重新拉取列表，若为空则补建一个不限额度令牌，保证账号至少有一个可用令牌
//  4. 补充额度：按 Id 匹配线上令牌，额度加上补充值后整条回写，成功后以服务端确认值为准
//
// 单个调用失败只记日志不中断，剩余意图继续处理
func (c *Client) ReconcileTokens(ctx context.Context, intents []TokenIntent) *ReconcileOutcome {
	out := &ReconcileOutcome{}

	// 1. 删除
	// 不校验该令牌是否还在线上，是否删成由网关说了算
	for _, intent := range intents {
		if intent.Id == 0 || !intent.IsDeleted {
			continue
		}
		if c.deleteToken(ctx, intent.Id) {
			out.Deleted++
		}
	}

	// 2. 新建
	for _, intent := range intents {
		if intent.Id != 0 {
			continue
		}

		name := intent.Name
		if name == "" {
			name = defaultTokenName
		}
		remain := intent.RemainQuota
		if remain == 0 && !intent.UnlimitedQuota {
			remain = defaultTokenQuota
		}

		if !c.createToken(ctx, name, intent.UnlimitedQuota, remain) {
			continue
		}
		out.Created++

		if strings.HasPrefix(name, resalePrefix) {
			out.Candidates = append(out.Candidates, ResaleCandidate{
				Name:        name,
				RemainQuota: remain,
			})
		}
	}

	// 3. 兜底
	// 处理完声明的意图后以网关为准重新拉取
	live, err := c.listTokens(ctx)
	if err != nil {
		// 列表都拉不到，后面的补充额度无从谈起，带着已产生的结果返回
		z.Error("failed to fetch live token list, reconcile stopped",
			zap.String("username", c.username),
			zap.Error(err))
		return out
	}
	if len(live) == 0 {
		if c.createToken(ctx, defaultTokenName, true, 0) {
			out.Created++
		}
		live, err = c.listTokens(ctx)
		if err != nil {
			z.Error("failed to refetch token list after fallback create",
				zap.String("username", c.username),
				zap.Error(err))
			return out
		}
	}

	// 4. 补充额度
	for _, intent := range intents {
		if intent.Id == 0 || intent.SupplementQuota <= 0 {
			continue
		}

		idx := indexOfToken(live, intent.Id)
		if idx < 0 {
			// 找不到就跳过，绝不为补充额度凭空造令牌
			z.Warn("supplement target token not found on gateway",
				zap.String("username", c.username),
				zap.Int64("tokenId", intent.Id),
				zap.Int64("supplementQuota", intent.SupplementQuota))
			continue
		}

		updated := live[idx]
		updated.RemainQuota += intent.SupplementQuota

		confirmed, ok := c.updateToken(ctx, updated)
		if !ok {
			continue
		}

		// 以服务端确认值为准，吸收网关侧的取整等附带修改
		live[idx].RemainQuota = confirmed
		out.Supplemented++
	}

	out.Tokens = projectTokens(live)

	z.Info("token reconcile completed",
		zap.String("username", c.username),
		zap.Int("deleted", out.Deleted),
		zap.Int("created", out.Created),
		zap.Int("supplemented", out.Supplemented),
		zap.Int("liveTokens", len(out.Tokens)),
		zap.Int("resaleCandidates", len(out.Candidates)))

	return out
}

// deleteToken 删除一个令牌
func (c *Client) deleteToken(ctx context.Context, id int64) bool {
	path := fmt.Sprintf("/api/token/%d", id)
	reply, ok := c.callGateway(ctx, http.MethodDelete, path, nil)
	if !ok {
		z.Warn("token delete failed",
			zap.String("username", c.username),
			zap.Int64("tokenId", id))
		return false
	}
	if !reply.Success {
		z.Warn("gateway rejected token delete",
			zap.String("username", c.username),
			zap.Int64("tokenId", id),
			zap.String("message", reply.Message))
		return false
	}

	z.Info("token deleted",
		zap.String("username", c.username),
		zap.Int64("tokenId", id))
	return true
}

// createToken 新建一个令牌，永不过期
func (c *Client) createToken(ctx context.Context, name string, unlimited bool, remain int64) bool {
	body := map[string]any{
		"name":            name,
		"remain_quota":    remain,
		"expired_time":    -1,
		"unlimited_quota": unlimited,
	}

	reply, ok := c.callGateway(ctx, http.MethodPost, "/api/token/", body)
	if !ok {
		z.Warn("token create failed",
			zap.String("username", c.username),
			zap.String("name", name))
		return false
	}
	if !reply.Success {
		z.Warn("gateway rejected token create",
			zap.String("username", c.username),
			zap.String("name", name),
			zap.String("message", reply.Message))
		return false
	}

	z.Info("token created",
		zap.String("username", c.username),
		zap.String("name", name),
		zap.Bool("unlimited", unlimited),
		zap.Int64("remainQuota", remain))
	return true
}

// updateToken 整条回写令牌
// 返回服务端确认后的剩余额度，网关未回传时沿用请求值
func (c *Client) updateToken(ctx context.Context, token tokenWire) (int64, bool) {
	reply, ok := c.callGateway(ctx, http.MethodPut, "/api/token/", token)
	if !ok {
		z.Warn("token update failed",
			zap.String("username", c.username),
			zap.Int64("tokenId", token.Id))
		return 0, false
	}
	if !reply.Success {
		z.Warn("gateway rejected token update",
			zap.String("username", c.username),
			zap.Int64("tokenId", token.Id),
			zap.String("message", reply.Message))
		return 0, false
	}

	confirmed := token.RemainQuota
	var echoed tokenWire
	if err := json.Unmarshal(reply.Data, &echoed); err == nil && echoed.Id != 0 {
		confirmed = echoed.RemainQuota
	}

	z.Info("token quota supplemented",
		zap.String("username", c.username),
		zap.Int64("tokenId", token.Id),
		zap.Int64("confirmedRemainQuota", confirmed))
	return confirmed, true
}

func indexOfToken(tokens []tokenWire, id int64) int {
	for i := range tokens {
		if tokens[i].Id == id {
			return i
		}
	}
	return -1
}

// projectTokens 只外露调用方需要的字段
func projectTokens(tokens []tokenWire) []TokenRecord {
	records := make([]TokenRecord, 0, len(tokens))
	for _, t := range tokens {
		records = append(records, TokenRecord{
			Id:              t.Id,
			Key:             t.Key,
			Name:            t.Name,
			UnlimitedQuota:  t.UnlimitedQuota,
			UsedQuota:       t.UsedQuota,
			RemainQuota:     t.RemainQuota,
			SupplementQuota: 0,
		})
	}
	return records
}
