package notify_core

type WebhookConfig struct {
	ApiUrl string
}

type ServerChanConfig struct {
	SendKey string
}
