// pkg/messaging/nats.go
package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"Momentum/pkg/sync"
)

// NATSClient NATS客户端
// 同步任务生命周期事件以fire-and-forget方式发布到sync.<kind>主题
type NATSClient struct {
	conn *nats.Conn
}

// NewNATSClient 创建新的NATS客户端
func NewNATSClient(natsURL, clientName string) (*NATSClient, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name(clientName),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // 无限重连
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS连接断开: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Println("NATS重新连接成功")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("连接NATS失败: %w", err)
	}

	return &NATSClient{conn: nc}, nil
}

// PublishSyncEvent 发布同步任务事件
func (c *NATSClient) PublishSyncEvent(event sync.SyncEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	subject := "sync." + event.Kind
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

// Close 关闭NATS连接
func (c *NATSClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
