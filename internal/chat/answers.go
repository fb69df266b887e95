package chat

// qaEntry pairs a lowercase phrase with its canned answer.
type qaEntry struct {
	phrase string
	answer string
}

// commonQA is matched in declaration order; the first contained phrase wins.
var commonQA = []qaEntry{
	{"what is climate change", "Climate change refers to long-term shifts in temperatures and weather patterns. These changes may be natural, but since the 1800s, human activities have been the main driver of climate change, primarily due to the burning of fossil fuels which increases heat-trapping greenhouse gas levels in Earth's atmosphere."},
	{"what causes global warming", "Global warming is primarily caused by human activities that emit greenhouse gases like carbon dioxide and methane. These gases trap heat in the atmosphere, leading to a rise in global temperatures. Major sources include burning fossil fuels for energy, deforestation, and industrial processes."},
	{"difference between weather and climate", "Weather refers to short-term atmospheric conditions like temperature, humidity, and precipitation in a specific place and time. Climate is the average weather pattern in an area over a long period, typically 30 years or more. Weather can change minute-to-minute, while climate changes occur over decades or centuries."},
	{"what is carbon footprint", "A carbon footprint is the total amount of greenhouse gases (including carbon dioxide and methane) that are generated by our actions. The average carbon footprint for a person in the United States is 16 tons, one of the highest rates in the world."},
	{"how to reduce carbon footprint", "You can reduce your carbon footprint by using energy-efficient appliances, driving less, eating more plant-based foods, reducing waste, and conserving water. Small changes in daily habits can make a significant difference over time."},
	{"what is renewable energy", "Renewable energy comes from natural sources that are constantly replenished, such as sunlight, wind, water, and geothermal heat. Unlike fossil fuels, renewable energy sources don't deplete over time and generally produce fewer greenhouse gas emissions."},
	{"how do i start recycling", "Start recycling by checking your local guidelines for what materials are accepted. Set up separate bins for recyclables, clean containers before recycling them, and learn about special collection events for electronics or hazardous materials."},
	{"what is sustainable living", "Sustainable living means making choices that reduce your environmental impact by reducing resource consumption, carbon emissions, and waste. This includes using renewable energy, conserving water, reducing waste, and choosing environmentally friendly products."},
	{"what are environmental tips", "Some environmental tips include: use reusable bags and water bottles, reduce energy consumption by unplugging devices when not in use, eat less meat, compost food waste, conserve water, and walk or use public transportation when possible."},
}

var weatherKeywords = []string{
	"weather", "temperature", "forecast", "rain",
	"sunny", "cloudy", "humidity", "wind",
	"climate", "hot", "cold", "warm", "snow",
	"degrees", "celsius", "fahrenheit",
}

const (
	climateChangeAnswer = "Climate change is a long-term change in the average weather patterns that define Earth's local, regional and global climates. Human activities, particularly the burning of fossil fuels, are the primary driver of observed climate change since the mid-20th century."
	globalWarmingAnswer = "Global warming is the long-term heating of Earth's climate system observed since the pre-industrial period due to human activities, primarily fossil fuel burning, which increases heat-trapping greenhouse gas levels in Earth's atmosphere."
	recyclingAnswer     = "Recycling helps reduce waste sent to landfills, conserves natural resources, and reduces pollution. Common recyclable materials include paper, glass, plastic, and metals. Check your local recycling guidelines for specific instructions."
)

var environmentalTips = []string{
	"Try using a reusable water bottle instead of buying plastic ones. This simple switch can save hundreds of single-use bottles per year.",
	"Consider walking, biking, or using public transportation when possible to reduce carbon emissions from personal vehicles.",
	"Reduce food waste by planning meals, using leftovers creatively, and composting food scraps.",
	"Save energy by turning off lights when not in use and unplugging electronics that aren't being used.",
	"Opt for reusable shopping bags instead of plastic or paper bags from stores.",
	"Consider eating less meat, especially beef, to reduce your carbon footprint.",
}

var genericFallbacks = []string{
	"I'm here to help with weather and climate information. Could you try asking about current weather or climate trends?",
	"I can provide information about weather patterns, climate data, and environmental topics. What would you like to know?",
	"Feel free to ask about weather forecasts, climate trends, or environmental facts. I'm happy to assist!",
	"I'm your climate assistant, ready to help with weather information and climate data. What are you curious about?",
}

// Bot replies for the weather flow and the router boundary.
const (
	ClarifyLocationMessage  = "I'd be happy to tell you about the weather! Could you please specify which city or location you're interested in?"
	LocationNotFoundMessage = "I couldn't find weather data for that location. Could you please check the spelling or try another nearby city?"
	WeatherTroubleMessage   = "I'm having trouble getting weather information right now. Please try again later."
	GenericTroubleMessage   = "Sorry, I'm having trouble connecting to my services right now. Please try again later."
)

const climateTemplate = "The current weather in %s shows %s with a temperature of %d°C. This is typical for the season in this region."

const climatePromptTemplate = `
Provide a brief (2-3 sentences) climate context for %s based on this current weather data:
- Temperature: %g°C
- Condition: %s
- Humidity: %g%%
- Wind: %g km/h

Include seasonal context and whether this weather is typical or unusual for the current time of year.
Be informative but brief.
`
