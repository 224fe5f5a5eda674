package apperr

import (
	"errors"
	"fmt"
)

// 业务错误分类。边界层（handler）据此转换为HTTP状态码，
// 重试策略据此区分可重试与不可重试的失败。
var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrIssueNotFound       = errors.New("issue not found")
	ErrProjectNotFound     = errors.New("project not found")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrResultNotFound      = errors.New("hackathon result not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoCredentials       = errors.New("no pinning credentials configured")
)

// ValidationError 输入校验错误，不可重试
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidation 创建校验错误
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// TransactionFailed 链上交易回滚，重新提交仍会失败，不可重试
type TransactionFailed struct {
	TxHash string
	Reason string
}

func (e *TransactionFailed) Error() string {
	if e.TxHash == "" {
		return fmt.Sprintf("transaction failed: %s", e.Reason)
	}
	return fmt.Sprintf("transaction %s failed: %s", e.TxHash, e.Reason)
}

// ConnectivityError 网络或节点连接失败，可带退避重试
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connectivity error during %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// ConfigurationError 配置缺失或无效，需运维修复
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound 判断是否为实体不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWalletNotFound) ||
		errors.Is(err, ErrIssueNotFound) ||
		errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrCertificateNotFound) ||
		errors.Is(err, ErrResultNotFound)
}

// IsTransactionFailed 判断是否为链上回滚错误
func IsTransactionFailed(err error) bool {
	var tf *TransactionFailed
	return errors.As(err, &tf)
}

// IsConnectivity 判断是否为可重试的连接错误
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

// IsConfiguration 判断是否为配置错误
func IsConfiguration(err error) bool {
	var cfg *ConfigurationError
	return errors.As(err, &cfg) || errors.Is(err, ErrNoCredentials)
}
