// file: internal/errors/messages.go

package errors

type ErrorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e ErrorMessage) Error() string {
	return e.Message
}

var (
	ErrInvalidData    = ErrorMessage{Code: 1001, Message: "Invalid data"}
	ErrCourseNotFound = ErrorMessage{Code: 1002, Message: "Course not found"}
	ErrLastCourse     = ErrorMessage{Code: 1003, Message: "At least one course is required"}
	ErrAdviceInFlight = ErrorMessage{Code: 1004, Message: "Advice request already in progress"}
	ErrUnknownMessage = ErrorMessage{Code: 1005, Message: "Unknown message type"}
	ErrInternalServer = ErrorMessage{Code: 2000, Message: "Internal server error"}
)

var messages = map[int]ErrorMessage{
	ErrInvalidData.Code:    ErrInvalidData,
	ErrCourseNotFound.Code: ErrCourseNotFound,
	ErrLastCourse.Code:     ErrLastCourse,
	ErrAdviceInFlight.Code: ErrAdviceInFlight,
	ErrUnknownMessage.Code: ErrUnknownMessage,
	ErrInternalServer.Code: ErrInternalServer,
}

// GetErrorMessage 返回给定错误代码的错误消息
func GetErrorMessage(code int) string {
	if e, ok := messages[code]; ok {
		return e.Message
	}
	return "Unknown error"
}
