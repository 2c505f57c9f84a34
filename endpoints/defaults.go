package endpoints

import (
	"encoding/json"
	"time"
)

// Keys of the compiled-in endpoints
const (
	Translator       = "translator"
	BlogWriter       = "blog_writer"
	SveobuhvatniChat = "sveobuhvatni_chat"
	BrendChat        = "brend_chat"
	WordpressChat    = "wordpress_chat"
	CyberPanel       = "cyberpanel"
	ProductImage     = "product_image"
	Workflow         = "workflow"
	CryptoAnalysis   = "crypto_analysis"
)

const (
	defaultProductionURL = "https://n8n.vpa.in.rs/webhook/nano-banana-webhook"
	defaultTestURL       = "https://n8n.vpa.in.rs/webhook-test/nano-banana-webhook"
)

var cryptoAnalysisDemo = []string{
	"Trenutno tržište pokazuje pozitivne signale sa rastom Bitcoin-a od 2.5%. Ethereum zadržava stabilnost oko $2650.",
	"Tržište kriptovaluta je u blagom padu. Preporučuje se oprez pri trgovanju u narednih 24 sata.",
	"Solana pokazuje snažan rast od 5.1%. Cardano takođe beleži pozitivne rezultate sa rastom od 3.7%.",
	"Volatilnost na tržištu je povećana. Bitcoin oscilira između $42000 i $44000. Preporučuje se diversifikacija portfolija.",
	"Bullish trend se nastavlja. Većina altcoin-a prati Bitcoin-ov rast. Dobro vreme za long pozicije.",
}

// Defaults returns the compiled-in webhook table.
// A fresh slice is built on every call so callers may modify it freely.
func Defaults() []Endpoint {
	return []Endpoint{
		{
			Key:            Translator,
			URL:            "https://n8n.vpa.in.rs/webhook/translator-webhook-2024",
			Timeout:        30 * time.Second,
			ResultFields:   []string{"translation", "text"},
			RequiredFields: []string{"text"},
			Aliases:        []string{"/api/translate"},
		},
		{
			Key:     BlogWriter,
			URL:     "https://n8n.vpa.in.rs/webhook/upload-files",
			Timeout: 300 * time.Second,
			Aliases: []string{"/api/generate-blog"},
		},
		{
			Key:     SveobuhvatniChat,
			URL:     "https://n8n.vpa.in.rs/webhook/sveobuhvatni-chat-webhook",
			Timeout: 60 * time.Second,
			Aliases: []string{"/api/sveobuhvatni-chat"},
		},
		{
			Key:     BrendChat,
			URL:     "https://n8n.vpa.in.rs/webhook/brend-chat-webhook",
			Timeout: 60 * time.Second,
			Aliases: []string{"/api/brend-chat"},
		},
		{
			Key:     WordpressChat,
			URL:     "https://n8n.vpa.in.rs/webhook/wordpress-chat-webhook",
			Timeout: 60 * time.Second,
			Aliases: []string{"/api/wordpress-chat"},
		},
		{
			Key:     CyberPanel,
			URL:     "https://n8n.vpa.in.rs/webhook/CyberPanel-webhook-2024",
			Timeout: 60 * time.Second,
			Aliases: []string{"/api/cyberpanel"},
		},
		{
			Key:          ProductImage,
			URL:          defaultProductionURL,
			TestURL:      defaultTestURL,
			Timeout:      60 * time.Second,
			ResultFields: []string{"downloadUrl", "data.downloadUrl"},
			Aliases:      []string{"/api/product-image"},
		},
		{
			Key:     Workflow,
			URL:     defaultProductionURL,
			TestURL: defaultTestURL,
			Timeout: 30 * time.Second,
			Aliases: []string{"/n8n-workflow/trigger"},
		},
		{
			Key:          CryptoAnalysis,
			URL:          "https://n8n.vpa.in.rs/webhook/crypto-analysis",
			Timeout:      30 * time.Second,
			ResultFields: []string{"analysis"},
			Aliases:      []string{"/api/crypto-analysis"},
			Fallback:     cryptoFallback(),
		},
	}
}

func cryptoFallback() []json.RawMessage {
	payloads := make([]json.RawMessage, 0, len(cryptoAnalysisDemo))
	for _, text := range cryptoAnalysisDemo {
		data, _ := json.Marshal(map[string]string{"analysis": text})
		payloads = append(payloads, data)
	}
	return payloads
}
