package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"hydrovigil/internal/control"
	inputredis "hydrovigil/internal/input/redis"
)

// runSend queues one operator command on the control list read by serve.
func runSend(args []string) int {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	configFlag := fs.String("config", "", "path to config file")
	addr := fs.String("addr", "", "Redis address (overrides control.redis.addr)")
	key := fs.String("key", "", "command list (overrides control.redis.key)")
	timeout := fs.Duration("timeout", 5*time.Second, "Redis timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: hydrovigil send [flags] %s|%s\n", control.CommandTriggerAttack, control.CommandReset)
		return 2
	}
	cmd := control.Command(fs.Arg(0))
	if cmd != control.CommandTriggerAttack && cmd != control.CommandReset {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", fs.Arg(0))
		return 2
	}

	cfg, _ := loadConfig(*configFlag)
	rc := cfg.HydroVigil.Control.Redis
	if *addr != "" {
		rc.Addr = *addr
	}
	if *key != "" {
		rc.Key = *key
	}

	consumer, err := inputredis.NewConsumer(inputredis.Config{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
		Key:      rc.Key,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create Redis client: %v\n", err)
		return 1
	}
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	msg := control.Message{Command: cmd, RequestID: uuid.NewString()}
	payload, err := json.Marshal(msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode command: %v\n", err)
		return 1
	}
	if err := consumer.Push(ctx, payload); err != nil {
		fmt.Fprintf(os.Stderr, "failed to queue command: %v\n", err)
		return 1
	}
	fmt.Printf("queued %s on %s (request_id=%s)\n", cmd, consumer.Key(), msg.RequestID)
	return 0
}
