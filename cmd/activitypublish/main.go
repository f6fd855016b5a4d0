package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fr0stylo/mise/pkg/eventpublisher"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file loaded:", err)
	}
	v := viper.New()
	v.AutomaticEnv()

	endpoint := flag.String("endpoint", strings.TrimSpace(v.GetString("MISE_SINK_ENDPOINT")), "Collector base URL (or MISE_SINK_ENDPOINT)")
	token := flag.String("token", strings.TrimSpace(v.GetString("MISE_SINK_TOKEN")), "Collector token (or MISE_SINK_TOKEN)")
	secret := flag.String("secret", strings.TrimSpace(v.GetString("MISE_SINK_SECRET")), "Signing secret (or MISE_SINK_SECRET)")
	kind := flag.String("kind", "view_recipe", "Activity kind: view_recipe, cook_start, cook_complete, search")
	actorID := flag.String("actor", "", "Actor id the event is attributed to")
	recipeID := flag.String("recipe-id", "", "Recipe id (recipe events)")
	recipeName := flag.String("recipe-name", "", "Recipe name (recipe events)")
	query := flag.String("query", "", "Search query (search events)")
	source := flag.String("source", strings.TrimSpace(v.GetString("MISE_EVENT_SOURCE")), "Event source")
	timeout := flag.Duration("timeout", 10*time.Second, "Request timeout")
	flag.Parse()

	if strings.TrimSpace(*endpoint) == "" || strings.TrimSpace(*token) == "" || strings.TrimSpace(*secret) == "" {
		exitErr("endpoint/token/secret are required (or set MISE_SINK_ENDPOINT, MISE_SINK_TOKEN, MISE_SINK_SECRET)")
	}
	if strings.TrimSpace(*actorID) == "" {
		exitErr("actor is required")
	}

	payload := map[string]any{}
	if strings.TrimSpace(*query) != "" {
		payload["query"] = strings.TrimSpace(*query)
	} else {
		payload["recipe_id"] = strings.TrimSpace(*recipeID)
		payload["recipe_name"] = strings.TrimSpace(*recipeName)
	}

	client := eventpublisher.Client{
		Endpoint: strings.TrimSpace(*endpoint),
		Token:    strings.TrimSpace(*token),
		Secret:   strings.TrimSpace(*secret),
		Source:   strings.TrimSpace(*source),
		Timeout:  *timeout,
	}
	resolvedType, err := client.Publish(context.Background(), eventpublisher.Event{
		Kind:       strings.TrimSpace(*kind),
		ActorID:    strings.TrimSpace(*actorID),
		Payload:    payload,
		OccurredAt: time.Now(),
	})
	if err != nil {
		exitErr(err.Error())
	}

	fmt.Printf("Published %s for actor=%s\n", resolvedType, strings.TrimSpace(*actorID))
}

func exitErr(message string) {
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
