package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/mailer"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/queue"
	"github.com/wneessen/go-mail"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * config
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * smtp client
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
		mail.WithTimeout(time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second),
	)
	if err != nil {
		logger.Error("failed to create mail client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// fail fast on bad credentials instead of on the first message
	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	if err := client.DialWithContext(dialCtx); err != nil {
		cancel()
		logger.Error("failed to connect to the mail server", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cancel()
	_ = client.Close()

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer ch.Close()

	q, err := queue.Declare(ch, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Error("failed to declare queue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// one unacknowledged message at a time, a slow smtp server should not
	// pile messages up in this process
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("failed to set qos", slog.String("error", err.Error()))
		os.Exit(1)
	}

	msgs, err := ch.Consume(
		q.Name,
		"",    // let the broker name the consumer
		false, // ack manually after the mail is out
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to consume queue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("delivery channel closed")
					return
				}

				email, err := mailer.Compose(cfg.Email.SMTP.Username, msg.Body)
				if err != nil {
					level := slog.LevelError
					if errors.Is(err, mailer.ErrUnknownType) {
						level = slog.LevelWarn
					}
					logger.Log(ctx, level, "dropping mail message", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSendWithContext(ctx, email); err != nil {
					logger.Error("failed to send mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // requeue, the smtp server may be back later
					continue
				}

				_ = msg.Ack(false)
				logger.Info("mail sent", slog.String("to", strings.Join(email.GetToString(), ",")))
			}
		}
	}()

	logger.Info("waiting for messages (CTRL+C to quit)")
	<-sigChan

	logger.Info("shutting down mail worker")
	cancel()
	wg.Wait()
	logger.Info("mail worker stopped")
}
