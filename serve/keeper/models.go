package keeper

import (
	"github.com/laixingyu123/ay4/cmn/gateway_core"

	"github.com/google/uuid"
)

// Account 一个待维护的网关账号
// Tokens 为该账号声明的令牌期望状态，留空则只做签到和兜底建令牌
type Account struct {
	Username    string                     `json:"username" mapstructure:"username"`       // 登录用户名
	Password    string                     `json:"password" mapstructure:"password"`       // 登录密码
	DisplayName string                     `json:"displayName" mapstructure:"displayName"` // 显示名，仅用于日志和结果展示
	AccountRef  string                     `json:"accountRef" mapstructure:"accountRef"`   // 账号外部引用，原样带给商店
	Tokens      []gateway_core.TokenIntent `json:"tokens" mapstructure:"tokens"`           // 令牌期望状态
}

// RunResult 一个账号的运行结果，每个账号恰好产生一条
type RunResult struct {
	Username      string                       `json:"username"`              // 账号用户名
	DisplayName   string                       `json:"displayName,omitempty"` // 账号显示名
	Success       bool                         `json:"success"`               // 是否成功
	Profile       *gateway_core.AccountProfile `json:"profile"`               // 运行结束时的账户信息，失败时为空
	Tokens        []gateway_core.TokenRecord   `json:"tokens,omitempty"`      // 对账后的令牌列表
	RewardClaimed bool                         `json:"rewardClaimed"`         // 当日签到是否成功
	UploadedKeys  int                          `json:"uploadedKeys"`          // 上架成功的密钥数量
	ErrorMsg      string                       `json:"errorMsg,omitempty"`    // 失败原因
}

// BatchSummary 一次批量运行的摘要
type BatchSummary struct {
	BatchId      uuid.UUID   `json:"batchId"`      // 批次ID
	Source       string      `json:"source"`       // 触发来源 manual:手动 schedule:定时 cli:命令行
	AccountCount int         `json:"accountCount"` // 账号总数
	SuccessCount int         `json:"successCount"` // 成功账号数
	FailCount    int         `json:"failCount"`    // 失败账号数
	StartedAt    int64       `json:"startedAt"`    // 开始时间（毫秒）
	FinishedAt   int64       `json:"finishedAt"`   // 结束时间（毫秒）
	Results      []RunResult `json:"results"`      // 账号结果列表
}
