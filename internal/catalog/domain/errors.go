package domain

import "errors"

var (
	// ErrVideoNotFound 查無影片
	ErrVideoNotFound = errors.New("video not found")
	// ErrPermissionDenied 非擁有者或權限不足
	ErrPermissionDenied = errors.New("permission denied")
	// ErrFilenameMismatch 提交的檔名與資料庫不一致
	ErrFilenameMismatch = errors.New("filename does not match")
)
