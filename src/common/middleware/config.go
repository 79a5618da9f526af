package middleware

import "fmt"

const (
	AMQP_PROTOCOL = "amqp"
)

type RabbitConfig struct {
	User     string
	Password string
	Host     string
	Port     int
}

func NewRabbitConfig(user, password, host string, port int) RabbitConfig {
	return RabbitConfig{
		User:     user,
		Password: password,
		Host:     host,
		Port:     port,
	}
}

func (c RabbitConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s@%s:%d/", AMQP_PROTOCOL, c.User, c.Password, c.Host, c.Port)
}

// Address is the URL without credentials, safe to log.
func (c RabbitConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
