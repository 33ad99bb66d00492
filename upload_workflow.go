package main

import (
	"fmt"
	"log"
	"time"

	"github.com/playwright-community/playwright-go"
)

const YoutubeStudioPage string = "https://studio.youtube.com"

// 等待超时: 元素定位按快慢两档, 首页加载等页面级跳转用慢档
const (
	fastWait = 15 * time.Second
	slowWait = 60 * time.Second
)

// 固定的缓冲等待, 给页面自身的切换动画留时间
// 这里沿用固定时长而不是条件轮询, 隐含了对页面动画节奏的假设
const (
	settleShort = 1 * time.Second
	settleDone  = 3 * time.Second
)

// WorkflowContext 单个任务的流程上下文
// 页面句柄是共享的, 生命周期归会话引导管, 这里只是借用
type WorkflowContext struct {
	Page  playwright.Page
	Task  VideoUploadTask
	Stage string

	// scheduledAt 由 parse_post_time 步骤解析后供后续日期/时间步骤使用
	scheduledAt time.Time
}

// StageTimeoutError 某个步骤等待元素超时, 只导致当前任务失败
type StageTimeoutError struct {
	Stage    string
	Selector string
	Timeout  time.Duration
	Err      error
}

func (e *StageTimeoutError) Error() string {
	return fmt.Sprintf("步骤 %s 等待元素超时(%v): %s", e.Stage, e.Timeout, e.Selector)
}

func (e *StageTimeoutError) Unwrap() error { return e.Err }

// MissingFieldsError 页面上应有的输入框数量不足
type MissingFieldsError struct {
	Stage string
	Want  int
	Got   int
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("步骤 %s 未找到足够的输入框: 需要%d个, 实际%d个", e.Stage, e.Want, e.Got)
}

// InvalidScheduleError 发布时间解析失败
type InvalidScheduleError struct {
	Value string
	Err   error
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("发布时间格式错误, 需要 'YYYY-MM-DD HH:MM': %s", e.Value)
}

func (e *InvalidScheduleError) Unwrap() error { return e.Err }

// DriverFatalError 浏览器会话本身不可用, 剩余任务无法继续
type DriverFatalError struct {
	Err error
}

func (e *DriverFatalError) Error() string {
	return fmt.Sprintf("浏览器会话不可用: %v", e.Err)
}

func (e *DriverFatalError) Unwrap() error { return e.Err }

// uploadStage 上传流程中的一个步骤: 先等待元素出现, 再执行动作
// Selector 为空的步骤自己负责定位和等待
type uploadStage struct {
	ID       string
	Selector string // playwright选择器, xpath= 前缀表示XPath
	State    *playwright.WaitForSelectorState
	Timeout  time.Duration
	Run      func(ctx *WorkflowContext, loc playwright.Locator) error
}

// uploadStages 返回单个视频的完整步骤表, 按顺序解释执行
// 选择器针对日语界面的YouTube Studio, 界面改版时只需要调整这张表
func uploadStages() []uploadStage {
	return []uploadStage{
		{ID: "open_dashboard", Timeout: slowWait, Run: stageOpenDashboard},
		{ID: "open_create_menu", Selector: "xpath=//ytcp-button[contains(., '作成')]", Timeout: slowWait, Run: clickStage},
		{ID: "choose_upload", Selector: "xpath=//tp-yt-paper-item[contains(., '動画をアップロード')]", Timeout: slowWait, Run: clickStage},
		{ID: "inject_video", Selector: "input[type='file']", State: playwright.WaitForSelectorStateAttached, Timeout: slowWait, Run: stageInjectVideo},
		{ID: "fill_title", Timeout: fastWait, Run: stageFillTitle},
		{ID: "fill_description", Timeout: fastWait, Run: stageFillDescription},
		{ID: "inject_thumbnail", Timeout: fastWait, Run: stageInjectThumbnail},
		{ID: "mark_not_for_kids", Selector: "xpath=//div[@id='radioLabel' and contains(., 'いいえ、子ども向けではありません')]", Timeout: slowWait, Run: clickStage},
		{ID: "advance_screens", Timeout: slowWait, Run: stageAdvanceScreens},
		{ID: "expand_schedule", Selector: "#second-container-expand-button", Timeout: slowWait, Run: clickStage},
		{ID: "parse_post_time", Timeout: 0, Run: stageParsePostTime},
		{ID: "set_date", Selector: "span.dropdown-trigger-text.style-scope.ytcp-text-dropdown-trigger", Timeout: slowWait, Run: stageSetDate},
		{ID: "set_time", Selector: "ytcp-uploads-dialog input", Timeout: slowWait, Run: stageSetTime},
		{ID: "confirm_schedule", Selector: "xpath=//ytcp-button[@id='done-button']", Timeout: slowWait, Run: stageConfirmSchedule},
		{ID: "close_dialog", Selector: "xpath=//div[contains(@class, 'footer')]//ytcp-button[@id='close-button']", Timeout: fastWait, Run: clickStage},
	}
}

// runUploadWorkflow 对单个任务按步骤表执行完整上传流程
// 每一步都先确认页面状态再动作, 不会在上一步未确认前开始下一步
func runUploadWorkflow(page playwright.Page, task VideoUploadTask) error {
	ctx := &WorkflowContext{Page: page, Task: task}

	for _, stage := range uploadStages() {
		ctx.Stage = stage.ID
		var loc playwright.Locator
		if stage.Selector != "" {
			loc = page.Locator(stage.Selector).First()
			if err := waitForStage(ctx, loc, stage.Selector, stage.State, stage.Timeout); err != nil {
				return err
			}
		}
		if err := stage.Run(ctx, loc); err != nil {
			return err
		}
	}

	log.Printf("🎉 视频《%s》投稿设置完成", task.Title)
	return nil
}

// waitForStage 在超时内等待元素达到目标状态, 超时转成带步骤信息的错误
func waitForStage(ctx *WorkflowContext, loc playwright.Locator, selector string, state *playwright.WaitForSelectorState, timeout time.Duration) error {
	if state == nil {
		state = playwright.WaitForSelectorStateVisible
	}
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   state,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return &StageTimeoutError{Stage: ctx.Stage, Selector: selector, Timeout: timeout, Err: err}
	}
	return nil
}

// clickStage 通用步骤: 元素出现后直接点击
func clickStage(ctx *WorkflowContext, loc playwright.Locator) error {
	log.Printf("🖱️ [%s] 点击...", ctx.Stage)
	if err := loc.Click(); err != nil {
		return fmt.Errorf("步骤 %s 点击失败: %v", ctx.Stage, err)
	}
	return nil
}

// stageOpenDashboard 打开Studio首页, 导航失败视为会话级故障
func stageOpenDashboard(ctx *WorkflowContext, _ playwright.Locator) error {
	log.Println("🌐 打开YouTube Studio...")
	if _, err := ctx.Page.Goto(YoutubeStudioPage, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(slowWait.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return &DriverFatalError{Err: fmt.Errorf("打开 %s 失败: %v", YoutubeStudioPage, err)}
	}
	return nil
}

// stageInjectVideo 把视频文件塞进文件输入框, 等同于本地文件选择器选中
func stageInjectVideo(ctx *WorkflowContext, loc playwright.Locator) error {
	log.Printf("📁 注入视频文件: %s", ctx.Task.VideoPath)
	if err := loc.SetInputFiles([]string{ctx.Task.VideoPath}); err != nil {
		return fmt.Errorf("注入视频文件失败: %v", err)
	}
	return nil
}

// stageFillTitle 等标题和描述两个输入框同时出现, DOM顺序上前两个就是标题和描述
// 先全选删除清掉平台自动带入的默认标题, 再填新标题
func stageFillTitle(ctx *WorkflowContext, _ playwright.Locator) error {
	log.Println("📝 填写标题...")
	fields := ctx.Page.Locator("#textbox")

	deadline := time.Now().Add(fastWait)
	for {
		count, err := fields.Count()
		if err != nil {
			return fmt.Errorf("查找输入框失败: %v", err)
		}
		if count >= 2 {
			break
		}
		if time.Now().After(deadline) {
			return &MissingFieldsError{Stage: ctx.Stage, Want: 2, Got: count}
		}
		time.Sleep(500 * time.Millisecond)
	}

	title := fields.Nth(0)
	if err := title.Click(); err != nil {
		return fmt.Errorf("点击标题输入框失败: %v", err)
	}
	if err := title.Press("Control+a"); err != nil {
		return fmt.Errorf("全选默认标题失败: %v", err)
	}
	if err := title.Press("Delete"); err != nil {
		return fmt.Errorf("清空默认标题失败: %v", err)
	}
	if err := title.Fill(ctx.Task.Title); err != nil {
		return fmt.Errorf("填写标题失败: %v", err)
	}
	return nil
}

// stageFillDescription 描述框是富文本编辑器, 模拟键盘输入不可靠, 走脚本注入
func stageFillDescription(ctx *WorkflowContext, _ playwright.Locator) error {
	log.Println("📝 填写描述...")
	desc := ctx.Page.Locator("#textbox").Nth(1)
	if err := setContentEditableText(desc, ctx.Task.Description); err != nil {
		return fmt.Errorf("步骤 %s 失败: %v", ctx.Stage, err)
	}
	return nil
}

// setContentEditableText 往contenteditable元素写入内容并同步触发input事件
// 页面启用TrustedTypes时直接赋值innerHTML会被拦截, 先走页面自己的策略入口,
// 没有的话再退回直接赋值; input事件让字数统计等监听方立即感知变化
func setContentEditableText(loc playwright.Locator, text string) error {
	script := `(el, text) => {
		if (window.trustedTypes && window.trustedTypes.createPolicy) {
			const policy = window.trustedTypes.createPolicy('default', {
				createHTML: (input) => input,
			});
			el.innerHTML = policy.createHTML(text);
		} else {
			el.innerHTML = text;
		}
		el.dispatchEvent(new Event('input', { bubbles: true }));
	}`
	if _, err := loc.Evaluate(script, text); err != nil {
		return fmt.Errorf("写入富文本内容失败: %v", err)
	}
	return nil
}

// stageInjectThumbnail 设置了封面图才执行, 否则静默跳过
func stageInjectThumbnail(ctx *WorkflowContext, _ playwright.Locator) error {
	if ctx.Task.Thumbnail == "" {
		log.Println("ℹ️ 未设置封面图, 跳过")
		return nil
	}
	log.Printf("🖼️ 注入封面图: %s", ctx.Task.Thumbnail)

	selector := "input[type='file'][accept*='image']"
	loc := ctx.Page.Locator(selector).First()
	if err := waitForStage(ctx, loc, selector, playwright.WaitForSelectorStateAttached, fastWait); err != nil {
		return err
	}
	if err := loc.SetInputFiles([]string{ctx.Task.Thumbnail}); err != nil {
		return fmt.Errorf("注入封面图失败: %v", err)
	}
	return nil
}

// stageAdvanceScreens 连点三次"次へ", 对应平台固定的三个中间页签
func stageAdvanceScreens(ctx *WorkflowContext, _ playwright.Locator) error {
	selector := "xpath=//ytcp-button[@id='next-button']"
	next := ctx.Page.Locator(selector).First()
	for i := 0; i < 3; i++ {
		log.Printf("➡️ 点击下一步 (%d/3)...", i+1)
		if err := waitForStage(ctx, next, selector, nil, slowWait); err != nil {
			return err
		}
		if err := next.Click(); err != nil {
			return fmt.Errorf("点击下一步失败: %v", err)
		}
		time.Sleep(settleShort)
	}
	return nil
}

// stageParsePostTime 解析发布时间, 失败就终止当前任务的后续步骤
func stageParsePostTime(ctx *WorkflowContext, _ playwright.Locator) error {
	log.Printf("⏰ 解析发布时间: %s", ctx.Task.PostTime)
	t, err := time.Parse(postTimeLayout, ctx.Task.PostTime)
	if err != nil {
		return &InvalidScheduleError{Value: ctx.Task.PostTime, Err: err}
	}
	ctx.scheduledAt = t
	return nil
}

// stageSetDate 日期选择器不是原生控件: 点开下拉后在文本框里输入日期并回车提交
func stageSetDate(ctx *WorkflowContext, loc playwright.Locator) error {
	if err := loc.Click(); err != nil {
		return fmt.Errorf("点击日期下拉失败: %v", err)
	}
	time.Sleep(settleShort) // 等日历弹层渲染

	selector := "input[aria-labelledby='paper-input-label-2']"
	input := ctx.Page.Locator(selector).First()
	if err := waitForStage(ctx, input, selector, nil, slowWait); err != nil {
		return err
	}

	dateStr := ctx.scheduledAt.Format(dateFieldLayout)
	log.Printf("📅 输入日期: %s", dateStr)
	if err := input.Fill(""); err != nil {
		return fmt.Errorf("清空日期输入框失败: %v", err)
	}
	if err := input.Fill(dateStr); err != nil {
		return fmt.Errorf("输入日期失败: %v", err)
	}
	if err := input.Press("Enter"); err != nil {
		return fmt.Errorf("提交日期失败: %v", err)
	}
	return nil
}

// stageSetTime 时间输入框限定在上传对话框内, 避免匹配到页面上其他输入框
func stageSetTime(ctx *WorkflowContext, loc playwright.Locator) error {
	timeStr := ctx.scheduledAt.Format(timeFieldLayout)
	log.Printf("🕐 输入时间: %s", timeStr)
	if err := loc.Fill(""); err != nil {
		return fmt.Errorf("清空时间输入框失败: %v", err)
	}
	if err := loc.Fill(timeStr); err != nil {
		return fmt.Errorf("输入时间失败: %v", err)
	}
	if err := loc.Press("Enter"); err != nil {
		return fmt.Errorf("提交时间失败: %v", err)
	}
	return nil
}

// stageConfirmSchedule 点完成后多等一会, 让页面处理定时发布的确认
func stageConfirmSchedule(ctx *WorkflowContext, loc playwright.Locator) error {
	log.Println("🖱️ 确认定时发布设置...")
	if err := loc.Click(); err != nil {
		return fmt.Errorf("点击完成按钮失败: %v", err)
	}
	time.Sleep(settleDone)
	return nil
}
