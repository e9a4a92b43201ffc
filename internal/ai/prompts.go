package ai

import (
	"fmt"
	"strings"

	"github.com/Vovarama1992/mission_tower/internal/ports"
)

const missionSystemPrompt = `You are a seasoned storyteller who knows the world of Paw Patrol inside out.
Write one Paw Patrol mission that follows the show's formula. Ryder hears about a problem in Adventure Bay or close by,
sizes up the situation and picks the two or three pups best suited for it:
Chase for police and spy work, Marshall for fire and medical help, Skye for anything in the air,
Rubble for construction and digging, Zuma for water rescues, Rocky for recycling and repairs.
The pups gear up and head out, work together, hit one extra complication and solve it with a creative idea.
The mission ends with a celebration and a small lesson. Tell it from Ryder's point of view, addressing the pups.
Keep it age-appropriate and non-violent, and make every mission clearly different from the ones before.

Reply with a JSON object in exactly this shape:
{
  "mission_title": "short title of the mission",
  "involved_pups": ["names of the pups on the mission"],
  "main_location": "where the mission mostly takes place",
  "mission_script": "the full script, told by Ryder to the pups"
}`

const missionRequest = "Generate one mission"

const refineInstruction = `Now polish the translation so it reads like it was written by a native speaker.
Reply with a JSON object of the form {"translation": "the polished text"} and nothing else.`

func translationSystemPrompt(language string) string {
	return fmt.Sprintf(`You are a professional translator with years of experience and a deep knowledge of Paw Patrol.
You will be given an English text. Translate it into %s and reply with the translated text only.`, language)
}

// missionUserPrompt asks for a new mission. With a previous mission it adds a
// soft request to steer away from its location, pups and title; the model
// may still repeat them.
func missionUserPrompt(prev *ports.Mission) string {
	if prev == nil {
		return missionRequest
	}
	return fmt.Sprintf(
		"%s. Avoid location %s, pups %s, and title similar to %q",
		missionRequest,
		prev.Location,
		strings.Join(prev.Pups, ", "),
		prev.Title,
	)
}
