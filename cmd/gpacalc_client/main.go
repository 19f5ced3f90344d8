package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Message struct {
	Type string      `json:"type"`
	Code int         `json:"code"`
	Data interface{} `json:"data"`
}

type course struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Credits     float64 `json:"credits"`
	GradePoints float64 `json:"gradePoints"`
}

const menu = "Press '1' add course, '2' remove last course, '3 <credits> <points> [name]' update last course, '4' calculate, '5' advice"

func main() {
	host := flag.String("host", "127.0.0.1:9090", "server address")
	device := flag.String("device", "cli", "device code")
	flag.Parse()

	// 构建 WebSocket URL
	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws", RawQuery: "deviceCode=" + url.QueryEscape(*device)}
	log.Printf("connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial error: %v", err)
	}
	defer c.Close()

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	var closeOnce sync.Once
	finish := func() { closeOnce.Do(func() { close(done) }) }

	var (
		mu      sync.Mutex
		courses []course
		writeMu sync.Mutex
	)
	write := func(m Message) bool {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := c.WriteJSON(m); err != nil {
			log.Printf("write error: %v", err)
			finish()
			return false
		}
		return true
	}

	// 心跳
	go func() {
		for {
			select {
			case <-ticker.C:
				if !write(Message{Type: "heartbeat", Data: "ping"}) {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// 接收消息，服务端可能把多条消息合并成一帧
	go func() {
		for {
			_, frame, err := c.ReadMessage()
			if err != nil {
				log.Println("read error:", err)
				finish()
				return
			}

			for _, line := range bytes.Split(frame, []byte{'\n'}) {
				var response struct {
					Type string          `json:"type"`
					Code int             `json:"code"`
					Data json.RawMessage `json:"data"`
				}
				if err := json.Unmarshal(line, &response); err != nil {
					log.Println("json unmarshal error:", err)
					continue
				}

				switch response.Type {
				case "heartbeat_response":
				case "sheet_detail":
					var sheet struct {
						Courses []course `json:"courses"`
					}
					if err := json.Unmarshal(response.Data, &sheet); err == nil {
						mu.Lock()
						courses = sheet.Courses
						mu.Unlock()
						for i, sc := range sheet.Courses {
							log.Printf("  #%d %-12s credits=%.1f points=%.2f", i+1, sc.Name, sc.Credits, sc.GradePoints)
						}
					}
				default:
					log.Printf("recv %s (code %d): %s", response.Type, response.Code, response.Data)
				}
			}
		}
	}()

	// 键盘输入
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		log.Println(menu)

		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}

			mu.Lock()
			var last *course
			if len(courses) > 0 {
				lc := courses[len(courses)-1]
				last = &lc
			}
			mu.Unlock()

			var msg Message
			switch fields[0] {
			case "1":
				msg = Message{Type: "course_add"}
			case "2":
				if last == nil {
					continue
				}
				msg = Message{Type: "course_remove", Data: map[string]string{"courseId": last.ID}}
			case "3":
				if last == nil || len(fields) < 3 {
					log.Println(menu)
					continue
				}
				data := map[string]interface{}{
					"courseId":    last.ID,
					"credits":     fields[1],
					"gradePoints": fields[2],
				}
				if len(fields) > 3 {
					data["name"] = strings.Join(fields[3:], " ")
				}
				msg = Message{Type: "course_update", Data: data}
			case "4":
				msg = Message{Type: "calculate"}
			case "5":
				msg = Message{Type: "advice_request"}
			default:
				log.Println(menu)
				continue
			}

			if !write(msg) {
				return
			}
			log.Printf("%s request sent", msg.Type)
		}
	}()

	for {
		select {
		case <-done:
			log.Println("Connection closed")
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection...")
			writeMu.Lock()
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			writeMu.Unlock()
			if err != nil {
				log.Println("write close:", err)
				return
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
