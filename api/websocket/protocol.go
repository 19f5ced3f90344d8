package protocol

const (
	HeartbeatMessage         = "heartbeat"          // 心跳请求
	HeartbeatResponseMessage = "heartbeat_response" // 心跳响应
	ErrorMessage             = "error"              // 错误响应

	SheetDetailMessage  = "sheet_detail"  // 课程列表（连接时及每次修改后）
	CourseAddMessage    = "course_add"    // 添加课程请求
	CourseRemoveMessage = "course_remove" // 删除课程请求
	CourseUpdateMessage = "course_update" // 修改课程请求

	CalculateMessage   = "calculate"   // 计算请求
	CalculatingMessage = "calculating" // 计算中
	ResultMessage      = "result"      // 计算结果

	AdviceRequestMessage = "advice_request" // 学业建议请求
	AdvicePendingMessage = "advice_pending" // 学业建议生成中
	AdviceMessage        = "advice"         // 学业建议响应
)

type Message struct {
	Type string      `json:"type"`
	Code int         `json:"code"`
	Data interface{} `json:"data"`
}
