package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Excel批量表的表头, Sheet1 A~E列
var excelColumns = []struct {
	Header string
	Column string
}{
	{"视频路径", "A"},
	{"封面图", "B"},
	{"标题", "C"},
	{"描述", "D"},
	{"发布时间", "E"},
}

// LoadExcelManifest 从Excel批量表读取上传任务, 逐行校验并汇总错误
func LoadExcelManifest(filePath string) ([]VideoUploadTask, error) {
	log.Println("🔍 验证Excel批量表格式...")

	if exists, err := checkFileExists(filePath, "xls"); !exists {
		return nil, err
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("打开Excel文件失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("读取Sheet1失败: %v", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel文件没有数据行")
	}

	// 检查表头
	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.TrimSpace(header)] = i
	}

	var missingColumns []string
	for _, col := range excelColumns {
		if _, exists := headerMap[col.Header]; !exists {
			missingColumns = append(missingColumns, fmt.Sprintf("%s列(%s)", col.Column, col.Header))
		}
	}
	if len(missingColumns) > 0 {
		return nil, fmt.Errorf("缺少必要的列: %v", missingColumns)
	}

	log.Printf("✅ 表头验证成功，开始检查数据行...")

	var tasks []VideoUploadTask
	var problems []string

	for i, row := range rows[1:] {
		rowIndex := i + 2 // Excel行号从1开始, 表头占1行
		task, err := parseTaskFromExcelRow(row, headerMap)
		if err != nil {
			problems = append(problems, fmt.Sprintf("第%d行: %v", rowIndex, err))
			continue
		}
		task.Index = len(tasks) + 1
		tasks = append(tasks, task)
	}

	if len(problems) > 0 {
		return nil, &ManifestValidationError{Problems: problems}
	}

	log.Printf("✅ Excel批量表验证成功，共 %d 个上传任务", len(tasks))
	return tasks, nil
}

// parseTaskFromExcelRow 从Excel行解析上传任务
func parseTaskFromExcelRow(row []string, headerMap map[string]int) (VideoUploadTask, error) {
	cell := func(header string) string {
		idx, ok := headerMap[header]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	task := VideoUploadTask{
		VideoPath:   cell("视频路径"),
		Thumbnail:   cell("封面图"),
		Title:       cell("标题"),
		Description: cell("描述"),
		PostTime:    cell("发布时间"),
	}

	if task.VideoPath == "" {
		return task, fmt.Errorf("视频路径不能为空")
	}
	if exists, err := checkFileExists(task.VideoPath, ""); !exists {
		return task, fmt.Errorf("视频文件不存在: %s, %v", task.VideoPath, err)
	}
	if task.Thumbnail == "" {
		return task, fmt.Errorf("封面图不能为空")
	}
	if task.Title == "" {
		return task, fmt.Errorf("标题不能为空")
	}
	if task.Description == "" {
		return task, fmt.Errorf("描述不能为空")
	}
	if task.PostTime == "" {
		return task, fmt.Errorf("发布时间不能为空")
	}
	if _, err := time.Parse(postTimeLayout, task.PostTime); err != nil {
		return task, fmt.Errorf("发布时间格式错误, 需要 'YYYY-MM-DD HH:MM': %s", task.PostTime)
	}

	return task, nil
}
