package keeper

import (
	"context"
	"time"

	"github.com/laixingyu123/ay4/cmn"

	"go.uber.org/zap"
)

// maintainer 每天在配置的时间点触发一次全量批量维护
// 签到奖励按天刷新，错过当天就领不回来了
func maintainer(ctx context.Context) {
	for {
		// 计算距离下一次触发时间点的间隔
		duration, err := cmn.GetDurationUntilNextTargetTime(scheduleHour, scheduleMinute, 0, scheduleLocation)
		if err != nil {
			z.Error("failed to get duration until next target time", zap.Error(err))
			return
		}
		z.Info("keeper maintainer sleep until next run", zap.Duration("duration", duration))

		timer := time.NewTimer(duration)

		select {
		case <-ctx.Done():
			z.Info("keeper maintainer stopped")
			timer.Stop()
			return
		case <-timer.C:
			// 每天触发一次
			batchId, err := LaunchBatch("schedule", Accounts())
			if err != nil {
				z.Error("failed to launch scheduled batch", zap.Error(err))
				continue
			}
			z.Info("scheduled batch launched", zap.String("batchId", batchId.String()))
		}
	}
}
