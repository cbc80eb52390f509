package assistant

import (
	"strings"

	"github.com/nadzzz/krishivoice/internal/langid"
)

type topic int

const (
	topicGeneral topic = iota
	topicWeather
	topicSoil
)

// topicMarkers are matched against the lower-cased query.
var topicMarkers = map[langid.Code]map[topic][]string{
	langid.English: {
		topicWeather: {"weather"},
		topicSoil:    {"soil"},
	},
	langid.Hindi: {
		topicWeather: {"weather", "मौसम"},
		topicSoil:    {"soil", "मिट्टी"},
	},
	langid.Tamil: {
		topicWeather: {"weather", "காலநிலை"},
		topicSoil:    {"soil", "மண்"},
	},
}

// topicReplies holds the canned advice. "%s" in a general reply is the query.
var topicReplies = map[langid.Code]map[topic]string{
	langid.English: {
		topicWeather: "Today's weather is suitable for farming. Temperature 25-30°C with moderate humidity.",
		topicSoil:    "Maintain soil pH between 6.0-7.5. Add compost and organic fertilizers.",
		topicGeneral: `I understand your query about "%s". I'm here to provide agricultural guidance.`,
	},
	langid.Hindi: {
		topicWeather: "आज का मौसम खेती के लिए अनुकूल है। 25-30°C तापमान में मध्यम नमी।",
		topicSoil:    "अपनी मिट्टी का pH 6.0-7.5 के बीच रखें। कंपोस्ट डालें।",
		topicGeneral: `आपके प्रश्न "%s" के बारे में कृषि सलाह देने के लिए मैं यहाँ हूँ।`,
	},
	langid.Tamil: {
		topicWeather: "இன்றைய காலநிலை விவசாயத்திற்கு ஏற்றது. 25-30°C வெப்பநிலையில் மிதமான ஈரப்பதம்.",
		topicSoil:    "உங்கள் மண்ணின் pH 6.0-7.5 இடையே வைத்துக் கொள்ளுங்கள். கம்போஸ்ட் சேர்க்கவும்.",
		topicGeneral: `உங்கள் கேள்வி "%s" பற்றி விவசாய ஆலோசனை அளிக்க நான் இங்கே இருக்கிறேன்.`,
	},
}

// acknowledgements repeat the query back for languages without topic
// replies. "%s" is the query.
var acknowledgements = map[langid.Code]string{
	langid.Telugu:    "నేను విన్నది: %s. త్వరలో నేల, వాతావరణం, మార్కెట్ ధరల సమాచారం ఇస్తాను.",
	langid.Bengali:   "আমি শুনেছি: %s। শীঘ্রই আমি মাটি, আবহাওয়া এবং বাজারের দামের তথ্য দেব।",
	langid.Gujarati:  "મેં સાંભળ્યું: %s। ટૂંક સમયમાં હું માટી, હવામાન અને બજાર ભાવની માહિતી આપીશ।",
	langid.Kannada:   "ನಾನು ಕೇಳಿದೆ: %s. ಶೀಘ್ರದಲ್ಲೇ ನಾನು ಮಣ್ಣು, ಹವಾಮಾನ ಮತ್ತು ಮಾರುಕಟ್ಟೆ ಬೆಲೆಗಳ ಮಾಹಿತಿಯನ್ನು ಕೊಡುತ್ತೇನೆ.",
	langid.Malayalam: "ഞാൻ കേട്ടത്: %s. ഉടൻ മണ്ണ്, കാലാവസ്ഥ, വിപണി വിലകളുടെ വിവരങ്ങൾ നൽകാം.",
	langid.Marathi:   "मी ऐकले: %s। लवकरच मी माती, हवामान आणि बाजारभावाची माहिती देईन।",
	langid.Punjabi:   "ਮੈਂ ਸੁਣਿਆ: %s। ਜਲਦੀ ਹੀ ਮੈਂ ਮਿੱਟੀ, ਮੌਸਮ ਅਤੇ ਮਾਰਕੀਟ ਦੀਆਂ ਕੀਮਤਾਂ ਦੀ ਜਾਣਕਾਰੀ ਦੱਸਾਂਗਾ।",
	langid.Odia:      "ମୁଁ ଶୁଣିଲି: %s। ଶୀଘ୍ର ମୁଁ ମାଟି, ପାଗ ଏବଂ ବଜାର ମୂଲ୍ୟର ସୂଚନା ଦେବି।",
	langid.Assamese:  "মই শুনিলোঁ: %s। অতি সোনকালে মই মাটি, বতৰ আৰু বজাৰৰ দামৰ তথ্য দিম।",
}

// DemoReply returns the canned answer for text in lang. Hindi, Tamil and
// English get weather, soil or general advice; the other languages get an
// acknowledgement; anything else is answered in English.
func DemoReply(text string, lang langid.Code) string {
	if ack, ok := acknowledgements[lang]; ok {
		return strings.Replace(ack, "%s", text, 1)
	}

	replies, ok := topicReplies[lang]
	if !ok {
		lang, replies = langid.English, topicReplies[langid.English]
	}

	lower := strings.ToLower(text)
	t := topicGeneral
	for _, candidate := range []topic{topicWeather, topicSoil} {
		for _, m := range topicMarkers[lang][candidate] {
			if strings.Contains(lower, m) {
				t = candidate
				break
			}
		}
		if t != topicGeneral {
			break
		}
	}
	return strings.Replace(replies[t], "%s", text, 1)
}
