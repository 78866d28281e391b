package skill

type SpeechType string

const (
	PlainText SpeechType = "PlainText"
	SSML      SpeechType = "SSML"
)

// Card is the visual summary shown on devices with a screen.
type Card struct {
	Title   string
	Content string
}

// Response is what a handler produces for one invocation. Build it with
// Tell, TellWithCard, Ask or AskSSML.
type Response struct {
	Speech           string
	SpeechType       SpeechType
	Reprompt         string
	Card             *Card
	ShouldEndSession bool
	// Attributes are persisted by the platform for the next turn.
	Attributes map[string]any
}

func Tell(speech string) Response {
	return Response{Speech: speech, SpeechType: PlainText, ShouldEndSession: true}
}

func TellWithCard(speech, title, content string) Response {
	r := Tell(speech)
	r.Card = &Card{Title: title, Content: content}
	return r
}

func Ask(speech, reprompt string) Response {
	return Response{Speech: speech, SpeechType: PlainText, Reprompt: reprompt}
}

func AskSSML(ssml, reprompt string) Response {
	return Response{Speech: ssml, SpeechType: SSML, Reprompt: reprompt}
}

// silent carries no speech. Lifecycle events the platform expects no speech
// for get this.
func silent(end bool) Response {
	return Response{SpeechType: PlainText, ShouldEndSession: end}
}
