package convo

import (
	"fmt"
	"strings"

	"github.com/Pavantext/NutriMood/domain"
)

// BuildPrompt composes the instruction text sent to the generation
// model. Output is deterministic for identical inputs. Section order is
// fixed: conversation context, known preferences, current query, intent
// summary, tagged candidates, output contract.
func BuildPrompt(utterance string, candidates []domain.FoodRecord, state *domain.ConversationState, intent domain.IntentAnalysis) string {
	var b strings.Builder

	b.WriteString("Previous conversation:\n")
	if state != nil && state.Phase() == domain.PhaseActive {
		b.WriteString(state.ContextText())
	} else {
		b.WriteString("(none)")
	}
	b.WriteString("\n\n")

	b.WriteString("Known preferences and recent context:\n")
	b.WriteString(lastContextText(state))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Current user query: %s\n\n", utterance)

	fmt.Fprintf(&b, "Intent analysis: followup=%t type=%s", intent.IsFollowup, intent.FollowupType)
	if len(intent.ReferencedItems) > 0 {
		fmt.Fprintf(&b, " referenced=%s", strings.Join(intent.ReferencedItems, ", "))
	}
	if intent.Intent != "" {
		fmt.Fprintf(&b, " summary=%s", intent.Intent)
	}
	b.WriteString("\n\n")

	if len(candidates) > 0 {
		b.WriteString("Here are relevant food items from the database:\n")
		for _, c := range candidates {
			b.WriteString(candidateLine(c))
			b.WriteString("\n")
		}
	} else {
		b.WriteString("No close matches were found in the database for this query. Say so in a friendly way and invite the user to describe what they're craving differently.\n")
	}
	b.WriteString("\n")

	b.WriteString(outputInstruction)
	return b.String()
}

func lastContextText(state *domain.ConversationState) string {
	if state == nil {
		return "(none)"
	}
	var parts []string
	if prefs := state.PreferencesText(); prefs != "" {
		parts = append(parts, prefs)
	}
	if state.Last.MealType != "" {
		parts = append(parts, "last meal="+string(state.Last.MealType))
	}
	if state.Last.Dietary != "" {
		parts = append(parts, "last dietary="+state.Last.Dietary)
	}
	if state.Last.PriceRange != "" {
		parts = append(parts, "last price="+string(state.Last.PriceRange))
	}
	if state.Last.Cuisine != "" {
		parts = append(parts, "last cuisine="+state.Last.Cuisine)
	}
	if len(state.Last.Recommended) > 0 {
		names := make([]string, len(state.Last.Recommended))
		for i, r := range state.Last.Recommended {
			names[i] = r.Name
		}
		parts = append(parts, "last recommended="+strings.Join(names, ", "))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, "; ")
}

// candidateLine renders one candidate with its machine-readable id tag
// ahead of the human-visible fields.
func candidateLine(c domain.FoodRecord) string {
	var meta []string
	if c.Region != "" {
		meta = append(meta, "Region: "+c.Region)
	}
	if c.Mood != "" {
		meta = append(meta, "Mood: "+c.Mood)
	}
	if c.MealTime != "" {
		meta = append(meta, "Time: "+c.MealTime)
	}
	if c.Diet != "" {
		meta = append(meta, "Diet: "+c.Diet)
	}
	if c.Cuisine != "" {
		meta = append(meta, "Cuisine: "+c.Cuisine)
	}
	if c.SpiceLevel != "" {
		meta = append(meta, "Spice: "+c.SpiceLevel)
	}
	if c.Price != "" {
		meta = append(meta, "Price: "+c.Price)
	}
	line := fmt.Sprintf("%s %s: %s", EncodeIDTag(c.ID), c.Name, c.Description)
	if len(meta) > 0 {
		line += " (" + strings.Join(meta, ", ") + ")"
	}
	return line
}

const outputInstruction = `Respond like a friendly food expert chatting with a friend: personal, concise, plain text only, no HTML or markdown. Connect with the previous conversation when the query is a follow-up.

Output contract, follow it exactly:
- End your reply with a single tag of the form [FOOD_IDS:id1,id2] listing the ids of the items you actually recommend or discuss, comma-separated, no spaces inside the tag.
- Use only ids that appear as [FOOD_ID:...] in the list above. Never invent ids.
- If the message is casual (a greeting, thanks, small talk) or you recommend nothing, omit the tag or emit it empty as [FOOD_IDS:].
- The tag must be the last thing in your reply and must appear exactly once.`
