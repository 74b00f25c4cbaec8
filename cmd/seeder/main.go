// Command seeder pushes synthetic events at a running aggregator's webhook
// endpoint. Useful for exercising the classifier and the live feed without
// waiting on real sources.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	targetURL = flag.String("url", "http://localhost:8000/webhook", "webhook endpoint URL")
	count     = flag.Int("count", 20, "number of events to send")
	interval  = flag.Duration("interval", 500*time.Millisecond, "delay between events")
	kinds     = flag.String("kinds", "outage,security,release,capacity", "comma-separated event kinds")
)

func main() {
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	names := strings.Split(*kinds, ",")
	log.Printf("seeding %d events to %s (kinds: %v)", *count, *targetURL, names)

	client := &http.Client{Timeout: 10 * time.Second}

	sent := 0
	failed := 0
	for i := 0; i < *count; i++ {
		kind := names[rand.Intn(len(names))]
		if err := send(client, *targetURL, generate(kind)); err != nil {
			log.Printf("send failed: %v", err)
			failed++
		} else {
			sent++
		}

		if *interval > 0 && i < *count-1 {
			time.Sleep(*interval)
		}
	}

	log.Printf("done: %d sent, %d failed", sent, failed)
}

func generate(kind string) map[string]interface{} {
	switch kind {
	case "outage":
		return map[string]interface{}{
			"title": fmt.Sprintf("%s is unreachable from %s", gofakeit.DomainName(), gofakeit.City()),
			"description": fmt.Sprintf("Probes failing since %s, last HTTP status %d",
				time.Now().Add(-time.Duration(rand.Intn(120))*time.Minute).Format(time.RFC3339),
				[]int{500, 502, 503, 504}[rand.Intn(4)]),
			"url": gofakeit.URL(),
		}
	case "security":
		return map[string]interface{}{
			"title": []string{
				"Repeated failed logins from a single address",
				"Privilege escalation attempt detected",
				"Outbound traffic to a flagged host",
				"Credential stuffing against the public API",
			}[rand.Intn(4)],
			"description": fmt.Sprintf("Source %s, account %s", gofakeit.IPv4Address(), gofakeit.Username()),
		}
	case "release":
		return map[string]interface{}{
			"title":       fmt.Sprintf("Deploy of %s %s finished", gofakeit.AppName(), gofakeit.AppVersion()),
			"description": fmt.Sprintf("Rolled out to %d instances by %s", rand.Intn(40)+1, gofakeit.Username()),
		}
	case "capacity":
		return map[string]interface{}{
			"title":       fmt.Sprintf("Disk usage on %s at %d%%", gofakeit.DomainName(), rand.Intn(15)+85),
			"description": "Growth rate suggests exhaustion within 48 hours",
		}
	default:
		return map[string]interface{}{
			"title":       gofakeit.Sentence(6),
			"description": gofakeit.Sentence(12),
		}
	}
}

func send(client *http.Client, url string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
