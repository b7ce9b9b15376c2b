package keeper

import (
	"context"
	"fmt"

	"github.com/laixingyu123/ay4/cmn"
	"github.com/laixingyu123/ay4/cmn/gateway_core"
	"github.com/laixingyu123/ay4/cmn/keyprobe"
	"github.com/laixingyu123/ay4/cmn/shop_core"

	"go.uber.org/zap"
)

// publishResale 把本次新建的待上架令牌推送到商店
// 候选按名称回查对账后的令牌列表，只有拿到密钥的才会上架
// 返回上架成功的记录数
func (r *Runner) publishResale(ctx context.Context, account Account, outcome *gateway_core.ReconcileOutcome) int {
	if outcome == nil || len(outcome.Candidates) == 0 {
		return 0
	}
	if r.shop == nil {
		z.Info("shop disabled, resale candidates not published",
			zap.String("username", account.Username),
			zap.Int("candidates", len(outcome.Candidates)))
		return 0
	}

	records := make([]shop_core.KeyRecord, 0, len(outcome.Candidates))
	for _, candidate := range outcome.Candidates {
		token, found := findTokenByName(outcome.Tokens, candidate.Name)
		if !found || token.Key == "" {
			z.Warn("resale candidate has no live token with key",
				zap.String("username", account.Username),
				zap.String("name", candidate.Name))
			continue
		}

		records = append(records, shop_core.KeyRecord{
			Key:        token.Key,
			KeyType:    shop_core.KeyType(),
			Quota:      float64(candidate.RemainQuota) / float64(gateway_core.QuotaPerUnit()),
			IsSold:     false,
			SourceName: fmt.Sprintf("%s&%s", account.Username, candidate.Name),
			AccountRef: account.AccountRef,
		})
	}
	if len(records) == 0 {
		return 0
	}

	// 开启探活时先验一遍密钥，结果只记日志，不挡上架
	if keyprobe.Enabled() {
		probe := keyprobe.NewService()
		for _, record := range records {
			_, err := probe.Probe(record.Key)
			if err != nil {
				z.Warn("key probe failed before publish",
					zap.String("username", account.Username),
					zap.String("key", cmn.MaskKey(record.Key)),
					zap.Error(err))
			}
		}
	}

	// 商店单次最多收 MaxBatchSize 条，超出的分批推送
	uploaded := 0
	for start := 0; start < len(records); start += shop_core.MaxBatchSize {
		end := start + shop_core.MaxBatchSize
		if end > len(records) {
			end = len(records)
		}

		count, err := r.shop.PublishKeys(ctx, records[start:end])
		if err != nil {
			// 上架失败不回滚已建好的令牌，剩余批次继续
			z.Error("failed to publish keys to shop",
				zap.String("username", account.Username),
				zap.Int("batchSize", end-start),
				zap.Error(err))
			continue
		}
		uploaded += count
	}

	z.Info("resale publication finished",
		zap.String("username", account.Username),
		zap.Int("candidates", len(outcome.Candidates)),
		zap.Int("records", len(records)),
		zap.Int("uploaded", uploaded))

	return uploaded
}

func findTokenByName(tokens []gateway_core.TokenRecord, name string) (gateway_core.TokenRecord, bool) {
	for _, token := range tokens {
		if token.Name == name {
			return token, true
		}
	}
	return gateway_core.TokenRecord{}, false
}
