package keeper

import (
	"context"
	"fmt"
	"time"

	"github.com/laixingyu123/ay4/cmn"
	"github.com/laixingyu123/ay4/cmn/browser_core"
	"github.com/laixingyu123/ay4/cmn/gateway_core"
	"github.com/laixingyu123/ay4/cmn/shop_core"

	"go.uber.org/zap"
)

// Runner 按顺序驱动一批账号完成一轮维护
// 账号之间严格串行，互不共享任何状态
type Runner struct {
	launcher browser_core.Launcher
	shop     shop_core.Service
}

func NewRunner(launcher browser_core.Launcher, shop shop_core.Service) *Runner {
	return &Runner{
		launcher: launcher,
		shop:     shop,
	}
}

// RunAll 逐个处理账号，单个账号的任何失败都不会中断批次
// 每个账号恰好产生一条结果
func (r *Runner) RunAll(ctx context.Context, accounts []Account) []RunResult {
	z.Info("starting batch run", zap.Int("accounts", len(accounts)))

	results := make([]RunResult, 0, len(accounts))
	successCount := 0
	failureCount := 0

	for i, account := range accounts {
		result := r.runOne(ctx, account)
		if result.Success {
			successCount++
		} else {
			failureCount++
		}
		results = append(results, result)

		// 账号之间加入随机间隔，避免对网关造成突发压力
		if i < len(accounts)-1 {
			d := cmn.RandDuration(pacingMin, pacingMax)
			z.Info("pacing before next account", zap.Duration("sleep", d))
			time.Sleep(d)
		}
	}

	z.Info("batch run completed",
		zap.Int("total_accounts", len(accounts)),
		zap.Int("success_count", successCount),
		zap.Int("failure_count", failureCount))

	return results
}

// runOne 完成一个账号的完整流程：
// 登录 -> 签到 -> 拉取账户信息 -> 划转奖励 -> 令牌对账 -> 上架
// 浏览器上下文在所有退出路径上都会被关闭
func (r *Runner) runOne(ctx context.Context, account Account) (result RunResult) {
	result = RunResult{
		Username:    account.Username,
		DisplayName: account.DisplayName,
	}

	display := account.DisplayName
	if display == "" {
		display = account.Username
	}

	// 意外错误只断送当前账号，不影响批次里的其他账号
	defer func() {
		if rec := recover(); rec != nil {
			z.Error("unexpected failure while running account",
				zap.String("account", display),
				zap.Any("panic", rec))
			result.Success = false
			result.Profile = nil
			result.ErrorMsg = fmt.Sprintf("unexpected failure: %v", rec)
		}
	}()

	z.Info("running account", zap.String("account", display))

	if r.launcher == nil {
		z.Error("browser launcher not available", zap.String("account", display))
		result.ErrorMsg = "browser launcher not available"
		return result
	}

	agent, err := r.launcher.Open(ctx)
	if err != nil || agent == nil {
		if err == nil {
			err = fmt.Errorf("launcher returned no agent")
		}
		z.Error("failed to open browser context",
			zap.String("account", display),
			zap.Error(err))
		result.ErrorMsg = fmt.Sprintf("failed to open browser context: %v", err)
		return result
	}
	defer agent.Close()

	client := gateway_core.NewClient(agent, account.Username)

	// 登录失败对该账号是致命的
	err = client.Login(ctx, account.Password)
	if err != nil {
		result.ErrorMsg = err.Error()
		return result
	}

	// 签到失败不影响后续流程
	result.RewardClaimed = client.ClaimDailyReward(ctx)

	// 拉取账户信息，失败时降级使用登录响应附带的数据
	profile := client.FetchProfile(ctx)
	if profile == nil {
		profile = client.LoginProfile()
		z.Warn("profile fetch failed, using login-embedded profile",
			zap.String("account", display))
	}

	// 邀请奖励折进主余额
	client.SettleBonus(ctx, profile)

	// 令牌对账
	outcome := client.ReconcileTokens(ctx, account.Tokens)

	// 新建的待上架令牌推送到商店
	result.UploadedKeys = r.publishResale(ctx, account, outcome)

	result.Success = true
	result.Profile = profile
	result.Tokens = outcome.Tokens

	z.Info("account run finished",
		zap.String("account", display),
		zap.Bool("rewardClaimed", result.RewardClaimed),
		zap.Int("tokens", len(result.Tokens)),
		zap.Int("uploadedKeys", result.UploadedKeys))

	return result
}
