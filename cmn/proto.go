package cmn

import (
	"encoding/json"

	"github.com/jmoiron/sqlx/types"
)

type ReqProto struct {
	//***页码从第零页开始***
	Page     int64 `json:"page,omitempty"`
	PageSize int64 `json:"pageSize,omitempty"`

	Data   json.RawMessage `json:"data,omitempty"`
	Filter json.RawMessage `json:"filter,omitempty"`
}

type ReplyProto struct {
	//Status, 0: success, others: fault
	Status int `json:"status"`

	//Msg, Action result describe by literal
	Msg string `json:"msg,omitempty"`

	//Data, operand
	Data types.JSONText `json:"data,omitempty"`

	// RowCount, just row count
	RowCount int64 `json:"rowCount,omitempty"`
}
