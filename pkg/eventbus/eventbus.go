package eventbus

import (
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sirupsen/logrus"
	"github.com/veridiapki/veridia/pkg/config"
)

var (
	channelMu     sync.Mutex
	channelPubSub *gochannel.GoChannel
)

// NewEventBusPublisher builds a publisher for the configured provider. The
// channel provider is process-local: every caller shares one GoChannel so
// subscribers see what publishers emit.
func NewEventBusPublisher(conf config.EventBusEngine, serviceID string, logger *logrus.Entry) (message.Publisher, error) {
	switch conf.Provider {
	case config.Channel:
		return sharedGoChannel(logger), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", conf.Provider)
	}
}

func NewEventBusSubscriber(conf config.EventBusEngine, serviceID string, logger *logrus.Entry) (message.Subscriber, error) {
	switch conf.Provider {
	case config.Channel:
		return sharedGoChannel(logger), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", conf.Provider)
	}
}

func sharedGoChannel(logger *logrus.Entry) *gochannel.GoChannel {
	channelMu.Lock()
	defer channelMu.Unlock()

	if channelPubSub == nil {
		lEventBus := NewLoggerAdapter(logger.WithField("subsystem-provider", "GoChannel - PubSub"))
		channelPubSub = gochannel.NewGoChannel(gochannel.Config{}, lEventBus)
	}

	return channelPubSub
}
