package bot

const (
	msgWhatDoYouWant = "what do you want?"
	msgNoPermission  = "You don't have enough permissions to do that."
	msgNotListening  = "I'm not listening in this channel. Use `{prefix}listen` first."
	msgNoData        = "I don't have enough data for that yet."
	msgNoToken       = "Give me a token to start from."
	msgNoPoem        = "No poem with those words. Try again, maybe a miracle will occur."
	msgNoPrefix      = "Give me a prefix to use."
	msgUnknownCmd    = "%s `%s` isn't even a command."

	// retaliationPhrase in a reply to the last taunt earns the umad image.
	retaliationPhrase = "no u"
)

const helpOverview = "I learn how this channel talks and talk back.\n" +
	"Commands (prefix `{prefix}`):\n" +
	"- `help [command]` shows help\n" +
	"- `listen [prob [value] | clear]` configures listening in this channel\n" +
	"- `gen [poem | token <token> | <user>]` generates text\n" +
	"- `poem [keywords... | gen]` finds or writes a poem\n" +
	"- `set prefix <prefix> | set insult` configures the bot\n" +
	"- `fuckyou`"

const helpListen = "`{prefix}listen` toggles learning and replying in this channel (needs manage permission).\n" +
	"`{prefix}listen prob` shows the reply probability.\n" +
	"`{prefix}listen prob <0-100>` sets the reply probability in percent (needs manage permission).\n" +
	"`{prefix}listen clear` forgets everything learned in this channel (needs manage permission)."

const helpGen = "`{prefix}gen` generates text from this channel.\n" +
	"`{prefix}gen token <token>` generates text starting at a token.\n" +
	"`{prefix}gen <user>` generates text the way a user talks.\n" +
	"`{prefix}gen poem` writes a poem out of this channel."

const helpPoem = "`{prefix}poem` posts a random poem.\n" +
	"`{prefix}poem <keywords...>` posts the poem that best matches the keywords.\n" +
	"`{prefix}poem gen` writes a new poem."

const helpSet = "`{prefix}set prefix <prefix>` changes the command prefix (needs manage permission).\n" +
	"`{prefix}set insult` toggles unprovoked insults (needs manage permission)."

const helpFuckYou = "`{prefix}fuckyou` no, fuck you."

const helpHelp = "`{prefix}help [command]` shows help for all commands or for one."

const (
	msgPrefixSet      = "Prefix set to `%s`."
	msgInsultsOn      = "Insults enabled. Brace yourselves."
	msgInsultsOff     = "Insults disabled. Lucky you."
	msgListenOn       = "Listening in this channel."
	msgListenOff      = "I'll keep quiet here, but I'm still taking notes."
	msgProbability    = "I reply to %d%% of messages here."
	msgProbabilitySet = "Reply probability set to %d%%."
	msgForgotten      = "Forgot everything I learned in this channel."
)
