package keeper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/laixingyu123/ay4/cmn"
	"github.com/laixingyu123/ay4/cmn/browser_core"
	"github.com/laixingyu123/ay4/cmn/notify_core"
	"github.com/laixingyu123/ay4/cmn/shop_core"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var (
	mu      sync.Mutex
	running bool

	lastSummary *BatchSummary
)

// TryRunBatch 同步执行一次批量维护并返回摘要
// 同一时间只允许一个批次在跑，重复触发直接报错
func TryRunBatch(source string, batchAccounts []Account) (*BatchSummary, error) {
	mu.Lock()
	if running {
		mu.Unlock()
		return nil, fmt.Errorf("a batch is already running")
	}
	running = true
	mu.Unlock()

	defer func() {
		mu.Lock()
		running = false
		mu.Unlock()
	}()

	summary := runBatch(uuid.New(), source, batchAccounts)

	mu.Lock()
	lastSummary = summary
	mu.Unlock()

	return summary, nil
}

// LaunchBatch 异步触发一次批量维护，立即返回批次ID
func LaunchBatch(source string, batchAccounts []Account) (uuid.UUID, error) {
	mu.Lock()
	if running {
		mu.Unlock()
		return uuid.Nil, fmt.Errorf("a batch is already running")
	}
	running = true
	mu.Unlock()

	batchId := uuid.New()

	go func() {
		defer func() {
			mu.Lock()
			running = false
			mu.Unlock()
		}()

		summary := runBatch(batchId, source, batchAccounts)

		mu.Lock()
		lastSummary = summary
		mu.Unlock()
	}()

	return batchId, nil
}

// State 当前是否有批次在跑，以及最近一次批次的摘要
func State() (bool, *BatchSummary) {
	mu.Lock()
	defer mu.Unlock()
	return running, lastSummary
}

// runBatch 执行一个批次：跑完所有账号、落库、推送结果摘要
func runBatch(batchId uuid.UUID, source string, batchAccounts []Account) *BatchSummary {
	startedAt := time.Now().UnixMilli()

	z.Info("batch launched",
		zap.String("batchId", batchId.String()),
		zap.String("source", source),
		zap.Int("accounts", len(batchAccounts)))

	// 批次先落库，结束后再回填统计
	if cmn.DBEnabled() {
		batch := cmn.TRunBatch{
			Id:           batchId,
			Source:       source,
			AccountCount: len(batchAccounts),
			StartedAt:    startedAt,
		}
		err := cmn.GormDB.Create(&batch).Error
		if err != nil {
			z.Error("failed to persist run batch", zap.Error(err))
		}
	}

	runner := NewRunner(browser_core.NewLauncher(), shop_core.NewService())
	results := runner.RunAll(context.Background(), batchAccounts)

	summary := &BatchSummary{
		BatchId:      batchId,
		Source:       source,
		AccountCount: len(batchAccounts),
		StartedAt:    startedAt,
		FinishedAt:   time.Now().UnixMilli(),
		Results:      results,
	}
	for _, result := range results {
		if result.Success {
			summary.SuccessCount++
		} else {
			summary.FailCount++
		}
	}

	persistResults(batchId, summary)
	notifySummary(summary)

	return summary
}

// persistResults 把账号结果写入运行记录表
func persistResults(batchId uuid.UUID, summary *BatchSummary) {
	if !cmn.DBEnabled() {
		return
	}

	rows := make([]cmn.TRunResult, 0, len(summary.Results))
	for _, result := range summary.Results {
		row := cmn.TRunResult{
			BatchId:       batchId,
			Username:      result.Username,
			DisplayName:   result.DisplayName,
			Success:       result.Success,
			ErrorMsg:      result.ErrorMsg,
			RewardClaimed: result.RewardClaimed,
			TokenCount:    len(result.Tokens),
			UploadedKeys:  result.UploadedKeys,
		}
		if result.Profile != nil {
			row.Quota = result.Profile.Quota
			profileJson, err := json.Marshal(result.Profile)
			if err == nil {
				row.Profile = datatypes.JSON(profileJson)
			}
		}
		if len(result.Tokens) > 0 {
			tokensJson, err := json.Marshal(result.Tokens)
			if err == nil {
				row.Tokens = datatypes.JSON(tokensJson)
			}
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		err := cmn.GormDB.Create(&rows).Error
		if err != nil {
			z.Error("failed to persist run results", zap.Error(err))
		}
	}

	err := cmn.GormDB.Model(&cmn.TRunBatch{}).Where("id = ?", batchId).Updates(map[string]any{
		"success_count": summary.SuccessCount,
		"fail_count":    summary.FailCount,
		"finished_at":   summary.FinishedAt,
	}).Error
	if err != nil {
		z.Error("failed to update run batch", zap.Error(err))
	}
}

// notifySummary 推送批次结果摘要，失败只记日志
func notifySummary(summary *BatchSummary) {
	if !notify_core.Enabled() {
		return
	}
	service := notify_core.NewService()
	if service == nil {
		return
	}

	title := fmt.Sprintf("ay4 批量维护完成：成功 %d / 失败 %d", summary.SuccessCount, summary.FailCount)

	var sb strings.Builder
	for _, result := range summary.Results {
		name := result.DisplayName
		if name == "" {
			name = result.Username
		}
		if result.Success {
			quota := int64(0)
			if result.Profile != nil {
				quota = result.Profile.Quota
			}
			sb.WriteString(fmt.Sprintf("- %s：额度 %d，令牌 %d，上架 %d\n",
				name, quota, len(result.Tokens), result.UploadedKeys))
		} else {
			sb.WriteString(fmt.Sprintf("- %s：失败，%s\n", name, result.ErrorMsg))
		}
	}

	err := service.NotifyRunSummary(title, sb.String())
	if err != nil {
		z.Error("failed to notify run summary", zap.Error(err))
	}
}
