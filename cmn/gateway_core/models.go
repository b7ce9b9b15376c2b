package gateway_core

import "encoding/json"

// gatewayReply 网关所有接口的通用响应外壳
// Data 的具体结构因接口而异，由各调用方自行解析
type gatewayReply struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// AccountProfile 网关账户信息
// Quota 为主余额，AffQuota 为邀请奖励余额，两者都以网关内部额度计
type AccountProfile struct {
	Id          int64  `json:"id"`           // 账户ID，登录后作为操作账号标识
	Username    string `json:"username"`     // 用户名
	DisplayName string `json:"display_name"` // 显示名
	Email       string `json:"email"`        // 邮箱
	Quota       int64  `json:"quota"`        // 主余额
	UsedQuota   int64  `json:"used_quota"`   // 已用额度
	AffCode     string `json:"aff_code"`     // 邀请码
	AffQuota    int64  `json:"aff_quota"`    // 邀请奖励余额
}

// tokenWire 网关令牌的完整线上结构
// 更新接口要求回传完整记录，所以这里保留全部字段
type tokenWire struct {
	Id             int64  `json:"id"`
	UserId         int64  `json:"user_id,omitempty"`
	Key            string `json:"key"`
	Status         int    `json:"status,omitempty"`
	Name           string `json:"name"`
	CreatedTime    int64  `json:"created_time,omitempty"`
	AccessedTime   int64  `json:"accessed_time,omitempty"`
	ExpiredTime    int64  `json:"expired_time,omitempty"`
	RemainQuota    int64  `json:"remain_quota"`
	UnlimitedQuota bool   `json:"unlimited_quota"`
	UsedQuota      int64  `json:"used_quota"`
}

// TokenRecord 面向调用方的令牌投影，网关内部字段不外露
type TokenRecord struct {
	Id              int64  `json:"id"`
	Key             string `json:"key"`
	Name            string `json:"name"`
	UnlimitedQuota  bool   `json:"unlimitedQuota"`
	UsedQuota       int64  `json:"usedQuota"`
	RemainQuota     int64  `json:"remainQuota"`
	SupplementQuota int64  `json:"supplementQuota"`
}

// TokenIntent 调用方声明的令牌期望状态
// Id 为零表示新建；Id 非零且 IsDeleted 为真表示删除；
// Id 非零且 SupplementQuota 大于零表示给对应令牌补充额度
type TokenIntent struct {
	Id              int64  `json:"id,omitempty" mapstructure:"id"`
	Name            string `json:"name,omitempty" mapstructure:"name"`
	IsDeleted       bool   `json:"isDeleted,omitempty" mapstructure:"isDeleted"`
	UnlimitedQuota  bool   `json:"unlimitedQuota,omitempty" mapstructure:"unlimitedQuota"`
	RemainQuota     int64  `json:"remainQuota,omitempty" mapstructure:"remainQuota"`
	SupplementQuota int64  `json:"supplementQuota,omitempty" mapstructure:"supplementQuota"`
}

// ResaleCandidate 本次运行新建的待上架令牌
// 只在一次运行内存续，由上架流程消费后丢弃
type ResaleCandidate struct {
	Name        string `json:"name"`
	RemainQuota int64  `json:"remainQuota"`
}

// ReconcileOutcome 一次令牌对账的结果
type ReconcileOutcome struct {
	Tokens       []TokenRecord     `json:"tokens"`       // 对账结束后的令牌列表投影
	Candidates   []ResaleCandidate `json:"candidates"`   // 待上架令牌
	Deleted      int               `json:"deleted"`      // 删除成功数
	Created      int               `json:"created"`      // 新建成功数
	Supplemented int               `json:"supplemented"` // 补充额度成功数
}
