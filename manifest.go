package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// 发布时间相关的统一格式
const (
	postTimeLayout  = "2006-01-02 15:04" // 清单中的发布时间
	dateFieldLayout = "2006/01/02"       // Studio日期输入框要求的格式
	timeFieldLayout = "15:04"            // Studio时间输入框要求的格式
)

// VideoUploadTask 单个视频的上传任务, 构建后不再修改
type VideoUploadTask struct {
	VideoPath   string `json:"video_path" validate:"required"`
	Thumbnail   string `json:"thumbnail" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	PostTime    string `json:"post_time" validate:"required"`

	// Index 是任务在清单中的序号(从1开始), 用于日志和错误提示
	Index int `json:"-"`
}

// UploadBatch 上传清单, videos 的顺序即处理顺序
type UploadBatch struct {
	Videos []VideoUploadTask `json:"videos"`
}

// ManifestValidationError 清单校验失败, 在启动任何自动化之前就终止
type ManifestValidationError struct {
	Problems []string
}

func (e *ManifestValidationError) Error() string {
	return fmt.Sprintf("清单校验失败:\n%s", strings.Join(e.Problems, "\n"))
}

var manifestValidator = newManifestValidator()

// newManifestValidator 错误信息里用json字段名, 方便操作员对照清单文件排查
func newManifestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadManifest 读取JSON上传清单并校验每个任务的必填字段
func LoadManifest(configPath string) ([]VideoUploadTask, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取清单文件失败: %v", err)
	}

	var batch UploadBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("解析清单JSON失败: %v", err)
	}
	if batch.Videos == nil {
		return nil, &ManifestValidationError{Problems: []string{"清单必须包含 'videos' 视频列表"}}
	}

	var problems []string
	for idx := range batch.Videos {
		if err := manifestValidator.Struct(batch.Videos[idx]); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					problems = append(problems, fmt.Sprintf("视频%d缺少必填项 '%s'", idx+1, fe.Field()))
				}
			} else {
				problems = append(problems, fmt.Sprintf("视频%d校验失败: %v", idx+1, err))
			}
			continue
		}
		batch.Videos[idx].Index = idx + 1
	}
	if len(problems) > 0 {
		return nil, &ManifestValidationError{Problems: problems}
	}

	return batch.Videos, nil
}

// checkFileExists 检查文件是否存在（支持相对路径和绝对路径）
func checkFileExists(filename string, extension string) (bool, error) {
	// filepath.Abs 会自动处理相对路径和绝对路径
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return false, fmt.Errorf("无法解析文件路径 %s: %v", filename, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fmt.Errorf("文件不存在: %s", filename)
		}
		return false, fmt.Errorf("无法访问文件 %s: %v", filename, err)
	}

	// 检查是否是目录
	if info.IsDir() {
		return false, fmt.Errorf("路径是目录而不是文件: %s", filename)
	}

	// 检查文件扩展名
	if extension == "xls" || extension == "xlsx" {
		ext := strings.ToLower(filepath.Ext(absPath))
		if ext != ".xls" && ext != ".xlsx" {
			return false, fmt.Errorf("文件扩展名不是 .xls 或 .xlsx: %s", filename)
		}
	}
	return true, nil
}
