package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hlefebvre/coliving-backend/config"
	"github.com/hlefebvre/coliving-backend/utils"
)

// StartContractEventConsumer reads contract events off Kafka and turns them
// into staff notifications. It blocks until the context is cancelled, so run
// it in its own goroutine.
func StartContractEventConsumer(ctx context.Context, cfg *config.Config, svc Service) {
	if !utils.KafkaEnabled() {
		return
	}

	reader := utils.NewContractEventReader(cfg)
	defer reader.Close()

	log.Println("✅ Contract event consumer started")
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("⚠️ Contract event read failed: %v", err)
			continue
		}

		var ev utils.ContractEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Printf("⚠️ Malformed contract event: %v", err)
			continue
		}

		var title, body string
		switch ev.Type {
		case "CONTRACT_SENT":
			title = "Contrat envoyé"
			body = fmt.Sprintf("Le contrat %s a été envoyé à %s pour signature.", ev.ContractNumber, ev.SignerEmail)
		case "CONTRACT_SIGNED":
			title = "Contrat signé"
			body = fmt.Sprintf("Le contrat %s a été signé par %s.", ev.ContractNumber, ev.SignerName)
		case "CONTRACT_ACTIVATED":
			title = "Contrat activé"
			body = fmt.Sprintf("Le contrat %s est maintenant actif.", ev.ContractNumber)
		default:
			continue
		}

		if err := svc.NotifyStaff(ctx, ev.Type, title, body); err != nil {
			log.Printf("⚠️ Failed to notify staff for %s: %v", ev.ContractNumber, err)
		}
	}
}
