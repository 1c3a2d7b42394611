// Package jobs holds the queue jobs dispatched by the services.
package jobs

import (
	"context"

	"github.com/shashiranjanraj/dailyfresh/config"
	"github.com/shashiranjanraj/dailyfresh/pkg/mail"
	"github.com/shashiranjanraj/dailyfresh/pkg/queue"
)

func init() {
	queue.Register("*jobs.SendActivationEmail", func() queue.Job { return &SendActivationEmail{} })
}

const activationHTML = `<h1>{{.Username}}, welcome to dailyfresh</h1>
<p>Please click the link below to activate your account:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>`

// SendActivationEmail mails the activation link for a new account.
type SendActivationEmail struct {
	To       string `json:"to"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (j *SendActivationEmail) Link() string {
	return config.AppURL() + "/user/active/" + j.Token
}

func (j *SendActivationEmail) Handle(ctx context.Context) error {
	return mail.To(j.To).
		Subject("dailyfresh account activation").
		Template(activationHTML, map[string]string{"Username": j.Username, "Link": j.Link()}).
		Send(ctx)
}
