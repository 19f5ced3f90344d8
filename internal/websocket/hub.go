package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	protocol "gpacalc/api/websocket"
	"gpacalc/internal/advice"
	e "gpacalc/internal/errors"
	"gpacalc/internal/gpa"
	"gpacalc/internal/session"
	"gpacalc/pkg/models"
	"gpacalc/pkg/utils"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 常量定义
const (
	writeWait      = 10 * time.Second    // 写操作超时时间
	pongWait       = 60 * time.Second    // 等待 pong 消息的最大时间
	pingPeriod     = (pongWait * 9) / 10 // 发送 ping 消息的周期
	maxMessageSize = 4096                // 最大消息大小
)

var (
	newline = []byte{'\n'}
)

// 定义状态码常量
const (
	CodeSuccess = 0
)

// WebSocket 连接升级器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 跨域限制由 HTTP 层的 CORS 配置负责
	},
}

// Config 控制计算结果展示延迟与建议请求超时
type Config struct {
	RevealDelay   time.Duration
	AdviceTimeout time.Duration
}

// Client 表示一个 WebSocket 客户端连接
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session *session.Session
	user    *models.User
}

type envelope struct {
	sessionID string
	data      []byte
}

// reveal 保存 calculate 时的计算结果及课程列表版本
type reveal struct {
	timer   *utils.Timer
	result  gpa.Result
	version uint64
}

type directMessage struct {
	client *Client
	data   []byte
}

// Hub 维护活动客户端的集合，并按会话广播消息
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client
	sessions   *session.Manager
	gateway    *advice.Gateway
	cfg        Config
	logger     *zap.Logger

	reveals map[string]*reveal
	mu      sync.Mutex
}

// NewHub 创建一个新的 Hub
func NewHub(sessions *session.Manager, gateway *advice.Gateway, cfg Config, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope),
		direct:     make(chan directMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		sessions:   sessions,
		gateway:    gateway,
		cfg:        cfg,
		logger:     logger,
		reveals:    make(map[string]*reveal),
	}
}

// Run 启动 Hub 的主循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case msg := <-h.direct:
			if _, ok := h.clients[msg.client]; ok {
				select {
				case msg.client.send <- msg.data:
				default:
					h.drop(msg.client)
				}
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.session.ID != msg.sessionID {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// drop 只能在 Run 中调用
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	if h.sessions.Detach(client.session.ID) {
		h.mu.Lock()
		if r, ok := h.reveals[client.session.ID]; ok {
			r.timer.Stop()
			delete(h.reveals, client.session.ID)
		}
		h.mu.Unlock()
	}
}

func (h *Hub) publish(sessionID string, msg protocol.Message) {
	h.broadcast <- envelope{sessionID: sessionID, data: h.encode(msg)}
}

// encode 序列化失败时记录日志，并以内部错误消息代替
func (h *Hub) encode(msg protocol.Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshalling message", zap.String("type", msg.Type), zap.Error(err))
		data, _ = json.Marshal(protocol.Message{
			Type: protocol.ErrorMessage,
			Code: e.ErrInternalServer.Code,
			Data: e.GetErrorMessage(e.ErrInternalServer.Code),
		})
	}
	return data
}

// readPump 从 WebSocket 连接中泵取消息
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Error("Unexpected close error", zap.Error(err))
			}
			break
		}

		var msg protocol.Message
		err = json.Unmarshal(message, &msg)
		if err != nil {
			c.hub.logger.Error("Error unmarshalling message", zap.Error(err))
			c.replyError(e.ErrInvalidData)
			continue
		}

		switch msg.Type {
		case protocol.HeartbeatMessage:
			c.handleHeartbeat()
		case protocol.CourseAddMessage:
			c.handleCourseAdd()
		case protocol.CourseRemoveMessage:
			c.handleCourseRemove(msg.Data)
		case protocol.CourseUpdateMessage:
			c.handleCourseUpdate(msg.Data)
		case protocol.CalculateMessage:
			c.handleCalculate()
		case protocol.AdviceRequestMessage:
			c.handleAdviceRequest()
		default:
			c.hub.logger.Warn("Unknown message type", zap.String("type", msg.Type))
			c.replyError(e.ErrUnknownMessage)
		}
	}
}

// authenticateUser 以设备码识别用户，缺省时为连接生成独立的匿名用户
func authenticateUser(r *http.Request) *models.User {
	deviceCode := r.URL.Query().Get("deviceCode")
	if deviceCode == "" {
		deviceCode = uuid.New().String()
	}
	return &models.User{
		ID:   deviceCode,
		Name: deviceCode,
	}
}

func (c *Client) reply(msg protocol.Message) {
	c.hub.direct <- directMessage{client: c, data: c.hub.encode(msg)}
}

func (c *Client) replyError(em e.ErrorMessage) {
	c.reply(protocol.Message{
		Type: protocol.ErrorMessage,
		Code: em.Code,
		Data: em.Message,
	})
}

// handleHeartbeat 处理心跳消息
func (c *Client) handleHeartbeat() {
	c.reply(protocol.Message{
		Type: protocol.HeartbeatResponseMessage,
		Data: "pong",
	})
}

func (c *Client) handleCourseAdd() {
	c.session.Sheet.Add()
	c.sheetChanged()
}

// handleCourseRemove 处理删除课程消息，最后一门课程不可删除
func (c *Client) handleCourseRemove(data interface{}) {
	courseID, ok := courseIDFrom(data)
	if !ok {
		c.hub.logger.Error("Invalid course ID")
		c.replyError(e.ErrInvalidData)
		return
	}

	removed, lastCourse := c.session.Sheet.Remove(courseID)
	switch {
	case lastCourse:
		c.hub.logger.Info("Refused to remove last course", zap.String("sessionID", c.session.ID), zap.String("courseID", courseID))
		c.replyError(e.ErrLastCourse)
		return
	case !removed:
		c.replyError(e.ErrCourseNotFound)
		return
	}

	c.sheetChanged()
}

// handleCourseUpdate 处理课程字段修改，学分非法时按 0 处理
func (c *Client) handleCourseUpdate(data interface{}) {
	fields, ok := data.(map[string]interface{})
	if !ok {
		c.hub.logger.Error("Invalid course update data")
		c.replyError(e.ErrInvalidData)
		return
	}

	courseID, ok := courseIDFrom(data)
	if !ok {
		c.hub.logger.Error("Invalid course ID")
		c.replyError(e.ErrInvalidData)
		return
	}

	var patch models.CoursePatch
	if v, ok := fields["name"]; ok {
		name, isString := v.(string)
		if !isString {
			c.replyError(e.ErrInvalidData)
			return
		}
		patch.Name = &name
	}
	if v, ok := fields["credits"]; ok {
		credits := models.ParseCredits(v)
		patch.Credits = &credits
	}
	if v, ok := fields["gradePoints"]; ok {
		points := models.ParseNumber(v)
		patch.GradePoints = &points
	}

	if !c.session.Sheet.Update(courseID, patch) {
		c.hub.logger.Error("Course not found", zap.String("courseID", courseID))
		c.replyError(e.ErrCourseNotFound)
		return
	}

	c.sheetChanged()
}

// sheetChanged 隐藏尚未展示的结果，并同步课程列表
func (c *Client) sheetChanged() {
	c.hub.cancelReveal(c.session.ID)
	c.hub.publish(c.session.ID, sheetDetail(c.session))
}

func (c *Client) handleCalculate() {
	c.hub.publish(c.session.ID, protocol.Message{
		Type: protocol.CalculatingMessage,
		Data: map[string]interface{}{"delayMs": c.hub.cfg.RevealDelay.Milliseconds()},
	})
	c.hub.scheduleReveal(c.session)
}

// handleAdviceRequest 异步请求学业建议，每个会话同时只允许一个请求
func (c *Client) handleAdviceRequest() {
	s := c.session
	if !s.BeginAdvice() {
		c.replyError(e.ErrAdviceInFlight)
		return
	}

	c.hub.publish(s.ID, protocol.Message{Type: protocol.AdvicePendingMessage})

	courses := s.Sheet.List()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.hub.cfg.AdviceTimeout)
		defer cancel()

		result := gpa.Compute(courses)
		tips := c.hub.gateway.Request(ctx, result.GPA, courses)
		s.EndAdvice()

		c.hub.publish(s.ID, protocol.Message{
			Type: protocol.AdviceMessage,
			Data: map[string]interface{}{
				"gpa":    result.GPA,
				"advice": tips,
			},
		})
	}()
}

// scheduleReveal 记录当前结果并开始计时，已结束的会话不再创建定时器
func (h *Hub) scheduleReveal(s *session.Session) {
	courses, version := s.Sheet.Snapshot()

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, live := h.sessions.GetSession(s.ID); !live {
		h.logger.Debug("Skip reveal for ended session", zap.String("sessionID", s.ID))
		return
	}

	r, ok := h.reveals[s.ID]
	if !ok {
		r = &reveal{}
		r.timer = utils.NewTimer("reveal", h.cfg.RevealDelay, func() { h.revealResult(s) }, h.logger)
		h.reveals[s.ID] = r
	}
	r.result = gpa.Compute(courses)
	r.version = version

	if r.timer.Pending() {
		r.timer.Reset()
		return
	}
	r.timer.Start()
}

// revealResult 仅在课程列表未被修改时展示 calculate 时的结果
func (h *Hub) revealResult(s *session.Session) {
	h.mu.Lock()
	r, ok := h.reveals[s.ID]
	var result gpa.Result
	var version uint64
	if ok {
		result, version = r.result, r.version
	}
	h.mu.Unlock()

	if !ok || s.Sheet.Version() != version {
		h.logger.Debug("Drop stale result", zap.String("sessionID", s.ID))
		return
	}

	h.publish(s.ID, protocol.Message{
		Type: protocol.ResultMessage,
		Data: result,
	})
}

func (h *Hub) cancelReveal(sessionID string) {
	h.mu.Lock()
	r, ok := h.reveals[sessionID]
	h.mu.Unlock()

	if ok {
		r.timer.Stop()
	}
}

func courseIDFrom(data interface{}) (string, bool) {
	fields, ok := data.(map[string]interface{})
	if !ok {
		return "", false
	}
	courseID, ok := fields["courseId"].(string)
	if !ok || courseID == "" {
		return "", false
	}
	return courseID, true
}

// courseView 附带成绩着色等级及学分是否为自定义值
type courseView struct {
	models.Course
	Band            string `json:"band"`
	IsCustomCredits bool   `json:"isCustomCredits"`
}

func sheetDetail(s *session.Session) protocol.Message {
	courses := s.Sheet.List()
	views := make([]courseView, 0, len(courses))
	for _, c := range courses {
		views = append(views, courseView{
			Course:          c,
			Band:            gpa.GradeBand(c.GradePoints),
			IsCustomCredits: !gpa.IsCommonCredits(c.Credits),
		})
	}

	return protocol.Message{
		Type: protocol.SheetDetailMessage,
		Code: CodeSuccess,
		Data: map[string]interface{}{
			"sessionId":      s.ID,
			"courses":        views,
			"adviceInFlight": s.AdviceInFlight(),
		},
	}
}

// ServeWs 处理 WebSocket 连接请求
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error("Error upgrading connection", zap.Error(err))
		return
	}
	user := authenticateUser(r)

	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		user:    user,
		session: hub.sessions.Attach(user),
	}
	client.hub.register <- client
	hub.logger.Info("Client connected", zap.String("userID", user.ID), zap.String("sessionID", client.session.ID), zap.Int("sessions", hub.sessions.Count()))

	client.send <- hub.encode(sheetDetail(client.session))

	go client.readPump()
	go client.writePump()
}

// writePump 将消息泵送到 WebSocket 连接
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write(newline)
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
