package record

import "github.com/google/uuid"

// ResultListItem 运行结果查询项
type ResultListItem struct {
	BatchId       uuid.UUID `json:"batchId"`            // 批次ID
	Source        string    `json:"source"`             // 触发来源
	Username      string    `json:"username"`           // 账号用户名
	DisplayName   string    `json:"displayName"`        // 账号显示名
	Success       bool      `json:"success"`            // 是否成功
	ErrorMsg      string    `json:"errorMsg,omitempty"` // 失败原因
	RewardClaimed bool      `json:"rewardClaimed"`      // 当日签到是否成功
	Quota         int64     `json:"quota"`              // 运行结束时的账户额度
	TokenCount    int       `json:"tokenCount"`         // 令牌数量
	UploadedKeys  int       `json:"uploadedKeys"`       // 上架成功的密钥数量
	StartedAt     int64     `json:"startedAt"`          // 批次开始时间
	FinishedAt    int64     `json:"finishedAt"`         // 批次结束时间
	CreatedAt     int64     `json:"createdAt"`          // 结果写入时间
}

// BalanceItem 账号额度榜项
// 取每个账号最近一次成功运行时的额度
type BalanceItem struct {
	Username  string `json:"username"`  // 账号用户名
	Quota     int64  `json:"quota"`     // 账户额度
	LastRunAt int64  `json:"lastRunAt"` // 最近一次成功运行时间
	Ranking   int64  `json:"ranking"`   // 排名
}
