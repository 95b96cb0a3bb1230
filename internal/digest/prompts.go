package digest

import (
	"fmt"
	"strings"
)

// EventsPrompt asks for long-running and one-off events in the window
// starting at d.
func EventsPrompt(area Area, d Dates) string {
	end := d.AddDays(EventsWindowDays)
	month := d.MonthName()
	return fmt.Sprintf(`You are a local events expert for %[1]s, UK. Find real events happening between %[2]s and %[3]s in %[4]s and nearby areas (prioritize within %[5]d miles of %[6]s).

ORGANIZE INTO TWO CATEGORIES:

🔄 LONG RUNNING EVENTS - These are regular, recurring activities that happen on a predictable schedule:
- Activities that repeat weekly, monthly, or daily
- Ongoing classes, services, or programs
- Regular market days, gym sessions, library programs
- Weekly social activities like pub quizzes
- Daily offerings like cinema showings or fitness classes
- Religious services that occur weekly
- Any activity someone could reliably expect to attend regularly

🎯 ONE-OFF EVENTS - These are specific, dated events that happen once or have a limited run:
- Special performances, concerts, or shows with specific dates
- One-time workshops, talks, or educational events
- Festival events or special celebrations
- Art exhibition openings/closings
- Community meetings or special gatherings
- Seasonal events tied to specific dates
- Any event that has a unique date/time and won't repeat regularly

SEARCH APPROACH:
- Think broadly about what activities might be happening in the %[4]s area
- Consider all types of venues and spaces where events could occur
- Look beyond obvious places - events can happen anywhere
- Think about seasonal activities appropriate for %[7]s
- Consider both indoor and outdoor possibilities

THEMATIC SEARCH - Cast a wide net for diverse event types:
- **Arts & Culture:** Any creative activities, performances, exhibitions, or cultural experiences
- **Food & Drink:** Any food-related events, special dining experiences, or beverage activities
- **Community & Local:** Any gatherings, meetings, social events, or community activities
- **Health & Wellness:** Any fitness, wellbeing, or outdoor activities beyond standard gym offerings
- **Learning & Education:** Any educational opportunities, talks, courses, or skill-sharing events
- **Seasonal/%[7]s:** Any activities tied to the season or to dates in %[7]s
- **Family & Children:** Any activities specifically designed for families or young people
- **Business & Professional:** Any networking, business events, or professional development activities

ACCURACY REQUIREMENTS:
✅ Include both regular scheduled activities AND specific one-off events
✅ Focus on events within 20 miles of %[4]s postcode %[6]s
✅ At least one credible source per event (venue name, organization, etc.)
✅ Provide realistic distance estimates from %[6]s
✅ One-off events can include typical seasonal activities that commonly happen in %[7]s
✅ Regular events should be activities that genuinely repeat on a schedule
❌ Don't invent completely fictional venues or organizations
❌ Don't create events that would be highly unusual for the %[4]s area

OUTPUT FORMAT (JSON only, no extra text):
%[8]s

TARGET: Find up to 5 long running events AND up to 5 one-off events (maximum 10 total events).
IMPORTANT: Only include events you are confident exist. If you can only find 2-3 events per category, that's perfectly fine. Do NOT create fictional events just to reach the maximum quota.`,
		area.Label(), d.ISO(), end.ISO(), area.Town, area.RadiusMiles, area.Postcode, month,
		eventsSchema(area, d, "[number]"))
}

// EventsFallbackPrompt is the more permissive retry used when the first
// reply lists no events.
func EventsFallbackPrompt(area Area, d Dates) string {
	end := d.AddDays(EventsWindowDays)
	return fmt.Sprintf(`FALLBACK: Find %[1]s area events for %[2]s to %[3]s. Organize into:

🔄 REGULAR ACTIVITIES (things that happen repeatedly):
- Any weekly, daily, or monthly recurring activities

🎯 SPECIAL EVENTS (specific dated events):
- Any one-time events, special occasions, or limited-time activities happening in the date range

SEARCH BROADLY:
- Think about all possible activities in the %[1]s area
- Consider seasonal events appropriate for %[4]s
- Look for both indoor and outdoor possibilities
- Include activities for all age groups and interests
- Consider business, educational, cultural, social, and recreational events

JSON ONLY:
%[5]s

TARGET: Find up to 5 events per category. Only include real events - don't invent activities to reach the quota.`,
		area.Town, d.ISO(), end.ISO(), d.MonthName(),
		eventsSchema(area, d, fmt.Sprintf("[number under %d]", area.RadiusMiles)))
}

func eventsSchema(area Area, d Dates, distance string) string {
	end := d.AddDays(EventsWindowDays)
	event := func(kind, timeHint, start string) string {
		return fmt.Sprintf(`    {
      "title": "[%[1]s name]",
      "sources": ["[venue/source name]"],
      "description": "[brief description]",
      "distanceMiles": %[2]s,
      "distance": "[X.X miles from %[3]s]",
      "time": "[%[4]s]",
      "startDateTime": %[5]s,
      "venueName": "[venue name]",
      "venueAddress": "[address with postcode if known]",
      "category": "%[6]s"
    }`, kind, distance, area.Postcode, timeHint, start, categoryFor(kind))
	}
	return fmt.Sprintf(`{
  "title": "🎟️ %s Events - Next %d Days",
  "subtitle": "%s to %s • near %s",
  "longRunningEvents": [
%s
  ],
  "oneOffEvents": [
%s
  ]
}`, area.Town, EventsWindowDays, d.Human(), end.Human(), area.Postcode,
		event("regular activity", "typical schedule, e.g. 'Daily 9am-5pm' or 'Tuesdays 7pm'", `"[next occurrence ISO format or null]"`),
		event("specific event", "specific date/time", `"[ISO format]"`))
}

func categoryFor(kind string) string {
	if strings.HasPrefix(kind, "regular") {
		return CategoryLongRunning
	}
	return CategoryOneOff
}

// GamesPrompt asks for the VR games newsletter.
func GamesPrompt() string {
	return fmt.Sprintf(`Create a gaming newsletter featuring at least %[1]d games. Return the response as a JSON object with the following structure:

{
  "title": "🎮 Gaming Newsletter - Latest Games & Updates",
  "subtitle": "🆕 Featured Games",
  "games": [
    {
      "name": "Game Name",
      "score": 8.5,
      "type": "Action RPG",
      "description": "Brief 1-2 sentence description of the game",
      "reason": "%[2]s",
      "storeUrl": "%[5]sgame+name"
    }
  ]
}

Please favor games with recent changes (price drops, new releases, or Horizon+ additions). Make sure to include a good mix of different game types and prioritize games that have had recent updates or changes in their status.

For the reason field, use one of: "%[2]s", "%[3]s", or "%[4]s".

For the storeUrl, provide Meta store URLs using the format "%[5]s[game-name]" where spaces are replaced with + and no special characters are used.

Return ONLY the JSON object, no additional text or formatting.`,
		MinGames, ReasonPriceDrop, ReasonHorizonPlus, ReasonNewRelease, metaStoreSearch)
}

// TVGuidePrompt is the first step of the TV guide and the default seed of
// the prompt optimizer.
func TVGuidePrompt(d Dates) string {
	full, short := d.FullDate(), d.Formatted()
	month, year := d.MonthName(), d.Year()

	sports := "- Weekday focus: Champions League/Europa League, international football, cricket, snooker"
	if d.IsWeekend() {
		sports = "- Weekend focus: Sky Sports typically shows Premier League, F1, rugby, golf, tennis"
	}
	var sunday string
	if d.DayName() == "Sunday" {
		sunday = "- Sunday staples: Antiques Roadshow, Countryfile, Call the Midwife, The Repair Shop"
	}

	return fmt.Sprintf(`You are a UK TV & Entertainment Guide creator for %[1]s (%[2]s).

CREATE COMPREHENSIVE ENTERTAINMENT RECOMMENDATIONS for %[1]s:

Return a JSON object with this EXACT structure:

{
  "title": "📺 TV & Entertainment Guide - %[2]s",
  "sports": [
    {
      "name": "[event_name]",
      "date": "%[1]s",
      "time": "[event_time]",
      "channel": "[broadcast_channel]",
      "category": "[sport_category]",
      "description": "[event_description]"
    }
  ],
  "liveTV": [
    {
      "title": "[show_title]",
      "date": "%[1]s",
      "time": "[broadcast_time]",
      "channel": "[tv_channel]",
      "genre": "[show_genre]",
      "description": "[show_description]"
    }
  ],
  "tvShows": [
    {
      "title": "[show_title]",
      "rating": [numeric_rating_out_of_10],
      "platform": "[specific_streaming_platform]",
      "genre": "[content_genre]",
      "plot": "[plot_summary]",
      "reason": "[why_recommended_today]"
    }
  ],
  "movies": [
    {
      "title": "[movie_title]",
      "rating": [numeric_rating_out_of_10],
      "platform": "[specific_streaming_platform]",
      "genre": "[movie_genre]",
      "plot": "[plot_summary]",
      "reason": "[why_recommended_today]"
    }
  ],
  "cinema": [
    {
      "title": "[movie_title]",
      "rating": [numeric_rating_out_of_10],
      "genre": "[movie_genre]",
      "plot": "[plot_summary]",
      "releaseStatus": "[current_release_status]"
    }
  ]
}

**CONTENT GENERATION GUIDELINES:**

**SPORTS (Aim for 4-8 items):**
%[3]s
- **Include recurring sports programming**: Match of the Day 2, Sports news shows, regular coverage
- **Use established patterns**: Sky Sports usually has football at 12:30, 3:00, 5:30 PM on weekends
- **Include sports news**: Sky Sports News, BBC Sport programming
- **Consider season timing**: Football season, cricket season, tennis tournaments
- **Be creative but realistic**: Invent plausible team matchups or use "major fixture" approach

**LIVE TV (Aim for 8-12 items):**
%[4]s
- **Regular UK programming**: First Dates, Come Dine With Me, Gogglebox, 24 Hours in Police Custody
- **News and current affairs**: BBC News, ITV Evening News, regional programming
- **Channel-specific content**: BBC drama slots, ITV crime series, Channel 4 documentaries
- **Reality and lifestyle**: Property shows, cooking programs, dating shows
- **Time slots**: Use realistic UK primetime 7-11 PM

**TV SHOWS (Aim for 12-20 items):**
Focus on both established hits AND newer releases:
- **Netflix UK**: The Crown, Stranger Things, Wednesday, Heartstopper, true crime docs, Korean content
- **Apple TV+**: Ted Lasso, Severance, The Morning Show, Foundation, Shrinking
- **Amazon Prime Video**: The Boys, Clarkson's Farm, The Marvelous Mrs. Maisel, Fallout
- **Disney+ UK**: Marvel shows, The Bear, Star Wars content, FX productions
- **BBC iPlayer**: Line of Duty, Happy Valley, recent BBC dramas, Blue Lights
- **Sky/NOW**: House of the Dragon, Succession reruns, HBO content
- **Include variety**: Include confirmed %[6]d seasons (many shows have renewal patterns)
- **Mix content types**: British shows, international hits, different genres

**MOVIES (Aim for 12-20 items):**
Mix of recent releases and streaming favorites:
- **Netflix UK**: Recent additions, Netflix originals, popular licensed content from the last two years
- **Apple TV+**: Apple originals and exclusives from the last two years
- **Amazon Prime Video**: Prime exclusives and popular additions from recent years
- **Sky Cinema/NOW**: Recent blockbusters, franchise films from the last two years
- **Disney+ UK**: Marvel, Star Wars, Pixar releases from the last two years
- **Focus on %[7]d-%[6]d**: Recent releases that would be available by %[5]s %[6]d

**CINEMA (Aim for 6-10 items):**
What would realistically be in UK cinemas in %[5]s %[6]d:
- **%[5]s timing**: Seasonal releases, blockbusters and awards contenders typical of %[5]s
- **Realistic patterns**: New franchise entries, sequel patterns, seasonal releases
- **Generic approach okay**: "Latest Marvel release", "New horror thriller", "Awards contender"
- **Consider release windows**: What typically comes out in %[5]s cinema seasons
- **Mix realistic titles with generic**: Some specific plausible titles, some generic categories

**QUALITY STANDARDS:**
- **Avoid generic entries**: Instead of "Premier League Live", use "Liverpool vs Arsenal" or similar
- **Specific show titles**: Use real show names, not generic descriptions
- **Realistic ratings**: 6.0-9.5 range, with most 7.0-8.5
- **Platform accuracy**: Use correct UK platform names
- **Engaging descriptions**: 2-3 sentences that sell the content
- **Current relevance**: Focus on what's actually popular/trending in %[6]d

**GENERATE SUBSTANTIAL CONTENT** - aim for the higher end of item counts while ensuring quality and specificity.

Return ONLY the JSON object, no additional text.`,
		full, short, sports, sunday, month, year, year-2)
}

// TVFactCheckPrompt asks the model to drop every step-one entry it cannot
// confirm for d.
func TVFactCheckPrompt(d Dates, initialJSON string) string {
	return fmt.Sprintf(`You are a strict fact-checker. Review the following TV and entertainment suggestions for %[1]s and filter out any that are not factually accurate.

CRITICAL FACT-CHECK REQUIREMENTS:
- TODAY'S EXACT DATE IS: %[1]s
- For SPORTS: Only keep events actually scheduled for %[1]s - verify the specific date
- For LIVE TV: Only keep shows actually broadcasting on %[1]s - verify the specific date
- For TV SHOWS/MOVIES: Only keep content actually available on stated platforms
- For CINEMA: Only keep movies actually showing in UK cinemas as of %[1]s

Original suggestions to fact-check:
%[2]s

Return your fact-checked results using this exact JSON structure template:

{
  "title": "[newsletter_title]",
  "dateChecked": "%[1]s",
  "sports": [
    {
      "name": "[event_name]",
      "time": "[event_time]",
      "channel": "[broadcast_channel]",
      "category": "[sport_category]",
      "description": "[event_description]",
      "dateVerified": "%[1]s"
    }
  ],
  "liveTV": [
    {
      "title": "[show_title]",
      "time": "[broadcast_time]",
      "channel": "[tv_channel]",
      "genre": "[show_genre]",
      "description": "[show_description]",
      "dateVerified": "%[1]s"
    }
  ],
  "tvShows": [
    {
      "title": "[show_title]",
      "rating": "[numeric_rating]",
      "platform": "[streaming_platform]",
      "genre": "[content_genre]",
      "plot": "[plot_summary]",
      "reason": "[recommendation_reason]"
    }
  ],
  "movies": [
    {
      "title": "[movie_title]",
      "rating": "[numeric_rating]",
      "platform": "[streaming_platform]",
      "genre": "[movie_genre]",
      "plot": "[plot_summary]",
      "reason": "[recommendation_reason]"
    }
  ],
  "cinema": [
    {
      "title": "[movie_title]",
      "rating": "[numeric_rating]",
      "genre": "[movie_genre]",
      "plot": "[plot_summary]",
      "releaseStatus": "[release_status]"
    }
  ]
}

Your fact-checking task - be extremely strict:
1. SPORTS: Check each sports event - is it really happening on %[1]s? Verify the date specifically.
2. LIVE TV: Check each live TV show - is it really airing tonight on %[1]s? Verify the broadcast schedule.
3. STREAMING: Check each streaming show/movie - is it really available on the stated platform?
4. CINEMA: Check each cinema movie - is it really showing in UK cinemas now?

STRICT REMOVAL CRITERIA - Remove any entries that are:
- Not scheduled for the exact date %[1]s (sports/live TV)
- Not available on the stated platform (streaming content)
- Not currently showing in UK cinemas (cinema content)
- Fictional, made-up, or generic content
- From wrong dates (even if close to %[1]s)

Be conservative: if you're unsure about a sports event or live TV show date, remove it.

Return the filtered JSON with only factually accurate entries. If a category has no accurate entries, return an empty array for that category.

Return ONLY the corrected JSON object, no additional text.`, d.FullDate(), initialJSON)
}
