package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeVideoDir 造一个素材目录: thumbnail.jpg + 一个mp4 + description.txt
func writeVideoDir(t *testing.T, base, name, title, desc string) {
	t.Helper()
	dir := filepath.Join(base, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "thumbnail.jpg"), []byte("jpg"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("mp4"), 0644))
	content := "备注行\n" + title + "\n" + desc + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "description.txt"), []byte(content), 0644))
}

func TestBuildUploadManifest_GroupingAdvancesDate(t *testing.T) {
	base := t.TempDir()
	for i := 1; i <= 6; i++ {
		writeVideoDir(t, base, fmt.Sprintf("v%02d", i), fmt.Sprintf("标题%d", i), "正文")
	}

	tasks, err := BuildUploadManifest(ScheduleOptions{
		BaseDir:      base,
		StartDate:    time.Date(2025, 2, 28, 15, 30, 0, 0, time.UTC),
		DayIncrement: 1,
		GroupCount:   3,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 6)

	// 前3个同一天, 后3个跨月进位到3月1日
	for i := 0; i < 3; i++ {
		assert.Equal(t, "2025-02-28 15:30", tasks[i].PostTime, "任务%d", i+1)
	}
	for i := 3; i < 6; i++ {
		assert.Equal(t, "2025-03-01 15:30", tasks[i].PostTime, "任务%d", i+1)
	}
}

func TestBuildUploadManifest_DayIncrementAndGroupCount(t *testing.T) {
	base := t.TempDir()
	for i := 1; i <= 5; i++ {
		writeVideoDir(t, base, fmt.Sprintf("v%02d", i), fmt.Sprintf("标题%d", i), "正文")
	}

	tasks, err := BuildUploadManifest(ScheduleOptions{
		BaseDir:      base,
		StartDate:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		DayIncrement: 3,
		GroupCount:   2,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 5)

	want := []string{
		"2025-06-01 09:00",
		"2025-06-01 09:00",
		"2025-06-04 09:00",
		"2025-06-04 09:00",
		"2025-06-07 09:00",
	}
	for i, task := range tasks {
		assert.Equal(t, want[i], task.PostTime, "任务%d", i+1)
	}
}

func TestBuildUploadManifest_LimitCapsItems(t *testing.T) {
	base := t.TempDir()
	for i := 1; i <= 6; i++ {
		writeVideoDir(t, base, fmt.Sprintf("v%02d", i), fmt.Sprintf("标题%d", i), "正文")
	}

	tasks, err := BuildUploadManifest(ScheduleOptions{
		BaseDir:      base,
		StartDate:    time.Date(2025, 2, 28, 15, 30, 0, 0, time.UTC),
		DayIncrement: 1,
		GroupCount:   2,
		Limit:        3,
	})
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestBuildUploadManifest_SkipsHiddenAndBrokenDirs(t *testing.T) {
	base := t.TempDir()
	writeVideoDir(t, base, "v01", "标题1", "正文")
	writeVideoDir(t, base, ".hidden", "隐藏", "正文")

	// 缺封面图的目录跳过但不报错
	broken := filepath.Join(base, "v02")
	require.NoError(t, os.MkdirAll(broken, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "clip.mp4"), []byte("mp4"), 0644))

	tasks, err := BuildUploadManifest(ScheduleOptions{
		BaseDir:      base,
		StartDate:    time.Date(2025, 2, 28, 15, 30, 0, 0, time.UTC),
		DayIncrement: 1,
		GroupCount:   2,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "标题1", tasks[0].Title)
}

func TestBuildUploadManifest_TaskFields(t *testing.T) {
	base := t.TempDir()
	writeVideoDir(t, base, "v01", "第一集", "第一行\n第二行")

	tasks, err := BuildUploadManifest(ScheduleOptions{
		BaseDir:      base,
		StartDate:    time.Date(2025, 2, 28, 15, 30, 0, 0, time.UTC),
		DayIncrement: 1,
		GroupCount:   2,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Equal(t, 1, task.Index)
	assert.Equal(t, "第一集", task.Title)
	assert.Equal(t, "第一行\n第二行", task.Description)
	assert.True(t, filepath.IsAbs(task.VideoPath))
	assert.True(t, filepath.IsAbs(task.Thumbnail))
	assert.Equal(t, "clip.mp4", filepath.Base(task.VideoPath))
	assert.Equal(t, "thumbnail.jpg", filepath.Base(task.Thumbnail))
}

func TestParseDescriptionFile_ShortFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "description.txt")

	// 只有一行: 标题和描述都为空
	require.NoError(t, os.WriteFile(path, []byte("备注行"), 0644))
	title, desc, err := parseDescriptionFile(path)
	require.NoError(t, err)
	assert.Empty(t, title)
	assert.Empty(t, desc)

	// 两行: 有标题没描述
	require.NoError(t, os.WriteFile(path, []byte("备注行\n标题行"), 0644))
	title, desc, err = parseDescriptionFile(path)
	require.NoError(t, err)
	assert.Equal(t, "标题行", title)
	assert.Empty(t, desc)
}

func TestWriteManifest_RoundTripsThroughLoader(t *testing.T) {
	base := t.TempDir()
	for i := 1; i <= 4; i++ {
		writeVideoDir(t, base, fmt.Sprintf("v%02d", i), fmt.Sprintf("标题%d", i), "正文")
	}

	tasks, err := BuildUploadManifest(ScheduleOptions{
		BaseDir:      base,
		StartDate:    time.Date(2025, 2, 28, 15, 30, 0, 0, time.UTC),
		DayIncrement: 1,
		GroupCount:   2,
	})
	require.NoError(t, err)

	output := filepath.Join(t.TempDir(), "output.json")
	require.NoError(t, WriteManifest(tasks, output))

	// 生成的清单必须能被上传模式原样读回
	loaded, err := LoadManifest(output)
	require.NoError(t, err)
	require.Len(t, loaded, len(tasks))
	for i := range tasks {
		assert.Equal(t, tasks[i].Title, loaded[i].Title)
		assert.Equal(t, tasks[i].PostTime, loaded[i].PostTime)
		assert.Equal(t, tasks[i].VideoPath, loaded[i].VideoPath)
		assert.Equal(t, tasks[i].Index, loaded[i].Index)
	}
}
