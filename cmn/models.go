package cmn

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TRunBatchName  = "t_run_batch"  // 批次运行记录表
	TRunResultName = "t_run_result" // 账号运行结果表

	VRunResultBatchName = "v_run_result_batch" // 账号运行结果视图（带批次信息）
)

// TRunBatch 批次运行记录表
// 一次批量维护对应一行，账号级别的结果在 t_run_result 中
type TRunBatch struct {
	Id           uuid.UUID `gorm:"column:id;type:uuid;primaryKey;not null;unique;index"` // 批次ID
	Source       string    `gorm:"column:source;type:varchar(20);not null;index"`        // 触发来源 manual:手动 schedule:定时 cli:命令行
	AccountCount int       `gorm:"column:account_count;type:int;default:0"`              // 账号总数
	SuccessCount int       `gorm:"column:success_count;type:int;default:0"`              // 成功账号数
	FailCount    int       `gorm:"column:fail_count;type:int;default:0"`                 // 失败账号数
	StartedAt    int64     `gorm:"column:started_at;type:bigint"`                        // 批次开始时间（毫秒）
	FinishedAt   int64     `gorm:"column:finished_at;type:bigint"`                       // 批次结束时间（毫秒）
	CreatedAt    int64     `gorm:"column:created_at;type:bigint;autoCreateTime:milli"`   // 创建时间
	UpdatedAt    int64     `gorm:"column:updated_at;type:bigint;autoUpdateTime:milli"`   // 更新时间
}

func (TRunBatch) TableName() string {
	return TRunBatchName
}

// TRunResult 账号运行结果表
type TRunResult struct {
	Id            int64          `gorm:"column:id;type:bigint;primaryKey;autoIncrement"`     // ID
	BatchId       uuid.UUID      `gorm:"column:batch_id;type:uuid;not null;index"`           // 批次ID
	Username      string         `gorm:"column:username;type:varchar(100);not null;index"`   // 账号用户名
	DisplayName   string         `gorm:"column:display_name;type:text"`                      // 账号显示名
	Success       bool           `gorm:"column:success;type:bool;default:false;index"`       // 是否成功
	ErrorMsg      string         `gorm:"column:error_msg;type:text"`                         // 失败原因
	RewardClaimed bool           `gorm:"column:reward_claimed;type:bool;default:false"`      // 当日签到是否成功
	Quota         int64          `gorm:"column:quota;type:bigint;default:0"`                 // 运行结束时的账户额度
	TokenCount    int            `gorm:"column:token_count;type:int;default:0"`              // 运行结束时的令牌数量
	UploadedKeys  int            `gorm:"column:uploaded_keys;type:int;default:0"`            // 上架成功的密钥数量
	Profile       datatypes.JSON `gorm:"column:profile;type:jsonb"`                          // 账户信息快照
	Tokens        datatypes.JSON `gorm:"column:tokens;type:jsonb"`                           // 令牌列表快照
	CreatedAt     int64          `gorm:"column:created_at;type:bigint;autoCreateTime:milli"` // 创建时间
	UpdatedAt     int64          `gorm:"column:updated_at;type:bigint;autoUpdateTime:milli"` // 更新时间
}

func (TRunResult) TableName() string {
	return TRunResultName
}

// VRunResultBatch 账号运行结果视图
// 把批次的触发来源和起止时间挂到每条账号结果上，供查询接口使用
type VRunResultBatch struct {
	Id            int64     `gorm:"column:id"`
	BatchId       uuid.UUID `gorm:"column:batch_id"`
	Source        string    `gorm:"column:source"`
	Username      string    `gorm:"column:username"`
	DisplayName   string    `gorm:"column:display_name"`
	Success       bool      `gorm:"column:success"`
	ErrorMsg      string    `gorm:"column:error_msg"`
	RewardClaimed bool      `gorm:"column:reward_claimed"`
	Quota         int64     `gorm:"column:quota"`
	TokenCount    int       `gorm:"column:token_count"`
	UploadedKeys  int       `gorm:"column:uploaded_keys"`
	StartedAt     int64     `gorm:"column:started_at"`
	FinishedAt    int64     `gorm:"column:finished_at"`
	CreatedAt     int64     `gorm:"column:created_at"`
}

func (VRunResultBatch) TableName() string {
	return VRunResultBatchName
}
