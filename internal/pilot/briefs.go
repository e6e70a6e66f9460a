package pilot

import (
	"fmt"
	"strings"

	"brandforge/internal/workflow"
)

type jobBrief struct {
	query string
	desc  string
}

// buildBrief composes the outbound job description for domain from upstream
// payloads. Every domain past strategy folds the narrative in so counterparty
// agents produce on-brand output.
func buildBrief(domain workflow.Domain, instance workflow.Instance) (jobBrief, error) {
	intake := intakePayload(instance)
	if intake == nil {
		return jobBrief{}, fmt.Errorf("instance has no intake payload")
	}

	switch domain {
	case workflow.DomainStrategy:
		return jobBrief{
			query: "brand strategist",
			desc: fmt.Sprintf("Develop a brand narrative and go-to-market strategy for %q. Brief: %s",
				intake.Name, intake.Brief),
		}, nil

	case workflow.DomainAvatar:
		strategy, err := strategyPayload(instance)
		if err != nil {
			return jobBrief{}, err
		}
		return jobBrief{
			query: "character designer",
			desc: fmt.Sprintf("Design a mascot avatar image for the brand %q. Narrative: %s",
				intake.Name, strategy.Narrative),
		}, nil

	case workflow.DomainMeme:
		strategy, err := strategyPayload(instance)
		if err != nil {
			return jobBrief{}, err
		}
		return jobBrief{
			query: "meme creator",
			desc: fmt.Sprintf("Create a shareable meme image for the brand %q. Narrative: %s",
				intake.Name, strategy.Narrative),
		}, nil

	case workflow.DomainVideo:
		strategy, err := strategyPayload(instance)
		if err != nil {
			return jobBrief{}, err
		}
		avatar := instance[workflow.DomainAvatar]
		if avatar == nil || avatar.Avatar == nil {
			return jobBrief{}, fmt.Errorf("video brief requires a completed avatar payload")
		}
		return jobBrief{
			query: "video producer",
			desc: fmt.Sprintf("Produce a short promotional video for the brand %q featuring the avatar at %s. Narrative: %s",
				intake.Name, avatar.Avatar.ImageURL, strategy.Narrative),
		}, nil

	case workflow.DomainAsset:
		urls := mediaURLs(instance)
		if len(urls) == 0 {
			return jobBrief{}, fmt.Errorf("asset brief requires completed media payloads")
		}
		owner := ""
		if rec := instance[workflow.DomainIntake]; rec != nil {
			owner = rec.Owner
		}
		return jobBrief{
			query: "ip asset registration",
			desc: fmt.Sprintf("Register the following media as IP assets for the brand %q, owner wallet %s: %s",
				intake.Name, owner, strings.Join(urls, ", ")),
		}, nil
	}

	return jobBrief{}, fmt.Errorf("no brief template for domain %q", domain)
}

func intakePayload(instance workflow.Instance) *workflow.IntakePayload {
	if rec := instance[workflow.DomainIntake]; rec != nil {
		return rec.Intake
	}
	return nil
}

func strategyPayload(instance workflow.Instance) (*workflow.StrategyPayload, error) {
	if rec := instance[workflow.DomainStrategy]; rec != nil && rec.Strategy != nil {
		return rec.Strategy, nil
	}
	return nil, fmt.Errorf("brief requires a completed strategy payload")
}

func mediaURLs(instance workflow.Instance) []string {
	var urls []string
	if rec := instance[workflow.DomainAvatar]; rec != nil && rec.Avatar != nil {
		urls = append(urls, rec.Avatar.ImageURL)
	}
	if rec := instance[workflow.DomainVideo]; rec != nil && rec.Video != nil {
		urls = append(urls, rec.Video.VideoURL)
	}
	if rec := instance[workflow.DomainMeme]; rec != nil && rec.Meme != nil {
		urls = append(urls, rec.Meme.ImageURL)
	}
	return urls
}
