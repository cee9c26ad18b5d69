package domain

import (
	"github.com/go-kratos/kratos/v2/errors"
)

const (
	ReasonConnection = "CONNECTION_FAILED"
	ReasonQuery      = "QUERY_FAILED"
	ReasonValidation = "INVALID_REQUEST"
)

var (
	// ErrConnection 数据库不可达或配置错误，本次运行无法继续
	ErrConnection = errors.ServiceUnavailable(ReasonConnection, "unable to connect to the report database")
	// ErrQuery 连接成功后语句执行失败
	ErrQuery = errors.InternalServer(ReasonQuery, "report query failed")
	// ErrValidation 调用方提供的 limit/threshold 不合法
	ErrValidation = errors.BadRequest(ReasonValidation, "invalid report request")
)

// NewConnectionError 构造带原因的 ConnectionError
func NewConnectionError(cause error, format string, args ...interface{}) error {
	return errors.Newf(errors.Code(ErrConnection), ReasonConnection, format, args...).WithCause(cause)
}

// NewQueryError 构造带原因的 QueryError
func NewQueryError(cause error, format string, args ...interface{}) error {
	return errors.Newf(errors.Code(ErrQuery), ReasonQuery, format, args...).WithCause(cause)
}

// NewValidationError 构造 ValidationError
func NewValidationError(format string, args ...interface{}) error {
	return errors.Newf(errors.Code(ErrValidation), ReasonValidation, format, args...)
}

func IsConnectionError(err error) bool { return errors.Is(err, ErrConnection) }

func IsQueryError(err error) bool { return errors.Is(err, ErrQuery) }

func IsValidationError(err error) bool { return errors.Is(err, ErrValidation) }
