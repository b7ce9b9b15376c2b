package record

import (
	"context"
	"fmt"

	"github.com/laixingyu123/ay4/cmn"

	"go.uber.org/zap"
)

// QueryRunResults 分页查询运行结果，按写入时间倒序
// username 不为空时只查该账号，success 不为空时按成功状态过滤
func QueryRunResults(ctx context.Context, page, pageSize int64, username string, success *bool) ([]ResultListItem, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	query := cmn.GormDB.Model(&cmn.VRunResultBatch{})
	if username != "" {
		query = query.Where("username = ?", username)
	}
	if success != nil {
		query = query.Where("success = ?", *success)
	}

	// 先查询总记录数
	var totalCount int64
	err := query.Count(&totalCount).Error
	if err != nil {
		z.Error("failed to query result count", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query result count: %w", err)
	}

	// 如果没有数据，返回空切片
	if totalCount == 0 {
		return []ResultListItem{}, 0, nil
	}

	var rows []cmn.VRunResultBatch
	err = query.
		Order("created_at DESC").
		Limit(int(pageSize)).
		Offset(int((page - 1) * pageSize)).
		Find(&rows).Error
	if err != nil {
		z.Error("failed to query run results", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query run results: %w", err)
	}

	// 构建返回结果
	items := make([]ResultListItem, len(rows))
	for i, row := range rows {
		items[i] = ResultListItem{
			BatchId:       row.BatchId,
			Source:        row.Source,
			Username:      row.Username,
			DisplayName:   row.DisplayName,
			Success:       row.Success,
			ErrorMsg:      row.ErrorMsg,
			RewardClaimed: row.RewardClaimed,
			Quota:         row.Quota,
			TokenCount:    row.TokenCount,
			UploadedKeys:  row.UploadedKeys,
			StartedAt:     row.StartedAt,
			FinishedAt:    row.FinishedAt,
			CreatedAt:     row.CreatedAt,
		}
	}

	return items, totalCount, nil
}

// QueryBalanceBoard 账号额度榜
// 每个账号取最近一次成功运行时的额度，按额度从高到低排
func QueryBalanceBoard(ctx context.Context, page, pageSize int64) ([]BalanceItem, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	// 构建基础子查询，取每个账号最近一次成功运行的时间
	subQuery := cmn.GormDB.Model(&cmn.TRunResult{}).
		Select("username, MAX(created_at) as last_run_at").
		Where("success = ?", true).
		Group("username")

	// 先查询总记录数
	var totalCount int64
	err := cmn.GormDB.Table("(?) as sub", subQuery).Count(&totalCount).Error
	if err != nil {
		z.Error("failed to query balance count", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query balance count: %w", err)
	}

	// 如果没有数据，返回空切片
	if totalCount == 0 {
		return []BalanceItem{}, 0, nil
	}

	// 回连结果表取对应额度，按额度排序分页
	var rows []struct {
		Username  string `gorm:"column:username"`
		Quota     int64  `gorm:"column:quota"`
		LastRunAt int64  `gorm:"column:last_run_at"`
	}
	err = cmn.GormDB.Table("(?) as latest", subQuery).
		Select("rr.username, rr.quota, latest.last_run_at").
		Joins("JOIN t_run_result AS rr ON rr.username = latest.username AND rr.created_at = latest.last_run_at").
		Order("rr.quota DESC").
		Limit(int(pageSize)).
		Offset(int((page - 1) * pageSize)).
		Scan(&rows).Error
	if err != nil {
		z.Error("failed to query balance board", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to query balance board: %w", err)
	}

	// 构建返回结果
	items := make([]BalanceItem, len(rows))
	for i, row := range rows {
		// 计算实际排名（考虑分页偏移）
		actualRanking := (page-1)*pageSize + int64(i) + 1
		items[i] = BalanceItem{
			Username:  row.Username,
			Quota:     row.Quota,
			LastRunAt: row.LastRunAt,
			Ranking:   actualRanking,
		}
	}

	return items, totalCount, nil
}
