package server

import (
	"time"

	"coordination-api/apiconfig"
	"coordination-api/coordination/types"
	"coordination-api/logging"

	natssrv "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

const (
	storageDir    = ".coordination/.nats"
	defaultMaxAge = 24 * 60 * 60 // 24 hours

	DefaultPort = 4222
	DefaultHost = "0.0.0.0"
)

type NatsServer interface {
	Start() error
	ClientURL() string
	Shutdown()
}

type server struct {
	conf apiconfig.NatsServerConfig
	ns   *natssrv.Server
}

func NewServer(config apiconfig.NatsServerConfig) NatsServer {
	return &server{
		conf: config,
	}
}

func (s *server) Start() error {
	if s.conf.Host == "" {
		s.conf.Host = DefaultHost
	}

	if s.conf.Port == 0 {
		s.conf.Port = DefaultPort
	}

	if s.conf.MaxMessagesAgeSeconds == 0 {
		s.conf.MaxMessagesAgeSeconds = defaultMaxAge
	}

	logging.Info("starting nats server", types.Events, "port", s.conf.Port, "host", s.conf.Host)

	opts := &natssrv.Options{
		Host:      s.conf.Host,
		Port:      s.conf.Port,
		JetStream: true,
		StoreDir:  storageDir,
	}

	ns, err := natssrv.NewServer(opts)
	if err != nil {
		return errors.Wrap(err, "failed to create NATS server")
	}

	s.ns = ns
	go ns.Start()

	for i := 0; i < 3; i++ {
		time.Sleep(1 * time.Second)
		if ns.ReadyForConnections(2 * time.Second) {
			break
		}
		if i == 2 {
			return errors.New("NATS server not ready after 3 attempts")
		}
	}

	return s.createEventStream()
}

// createEventStream provisions the single JetStream stream capturing every
// coordination subject. Consumers filter by subject.
func (s *server) createEventStream() error {
	nc, err := nats.Connect(s.ns.ClientURL())
	if err != nil {
		return errors.Wrap(err, "failed to connect to embedded NATS")
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		return errors.Wrap(err, "failed to get JetStream context")
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     types.CoordinationEventStream,
		Subjects: []string{types.SubjectWildcard},
		MaxAge:   time.Duration(s.conf.MaxMessagesAgeSeconds) * time.Second,
		Storage:  nats.FileStorage,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return errors.Wrap(err, "failed to add coordination event stream")
	}
	return nil
}

func (s *server) ClientURL() string {
	return s.ns.ClientURL()
}

func (s *server) Shutdown() {
	if s.ns != nil {
		s.ns.Shutdown()
	}
}
