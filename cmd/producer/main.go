// этот код не зависит от приложения
// и нужен только для ручной проверки импорта через кафку:
// отправляет содержимое JSON-файла с заказами одним сообщением в топик импорта
package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/asquebay/order-query-service/internal/config"
	"github.com/asquebay/order-query-service/internal/lib/fileio"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <orders.json>", os.Args[0])
	}
	path := os.Args[1]

	cfg := config.MustLoad(config.Path("config/config.yaml"))

	decoder := fileio.NewJSONDecoder()
	if !decoder.IsJSON(path) {
		log.Fatalf("file %s is not in JSON format", path)
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read file: %v", err)
	}

	// проверяем файл до отправки, чтобы не засорять топик
	records, err := decoder.Decode(bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("failed to decode orders: %v", err)
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Kafka.Brokers...),
		Topic:    cfg.Kafka.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Printf("sending %d orders to %s...", len(records), cfg.Kafka.Topic)
	if err := writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		log.Fatalf("failed to write message: %v", err)
	}
	fmt.Println("message sent successfully")
}
