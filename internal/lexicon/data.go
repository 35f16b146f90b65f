package lexicon

import "github.com/heartmarshall/kiddict-backend/internal/domain"

const imageHost = "https://d64gsuwffb70l.cloudfront.net/68e24805acad960e72719ec8_"

func single() *domain.Visual { return &domain.Visual{Kind: domain.VisualSingle, Color: true} }

func comic(panels ...string) *domain.Visual {
	return &domain.Visual{Kind: domain.VisualMultiPanel, Color: true, Panels: panels}
}

func silent() *domain.Visual { return &domain.Visual{Kind: domain.VisualNone} }

var regularEntries = []domain.WordEntry{
	{
		Word: "happy", Pronunciation: "HAP-ee",
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "adjective",
			Simple:       "You feel good. You smile.",
			Medium:       "When you feel happy, you feel good inside and want to smile.",
			Advanced:     "A feeling of joy and contentment that makes you smile and feel good.",
			Example:      "I am happy when I play with my friends.",
			Visual:       single(),
		}},
	},
	{
		Word: "run", Pronunciation: "RUN",
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "verb",
			Simple:       "Move fast with your legs.",
			Medium:       "To move quickly by moving your legs fast, faster than walking.",
			Advanced:     "To move rapidly on foot, with both feet off the ground during each stride.",
			Example:      "The dog likes to run in the park.",
			Visual:       comic("a child standing at a starting line", "the child running fast", "the child crossing the finish line"),
		}},
	},
	{
		Word: "apple", Pronunciation: "AP-ul",
		ImageURL: imageHost + "1759660091074_d77cdf66.webp",
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "noun",
			Simple:       "A round fruit you can eat. It is red or green.",
			Medium:       "A round fruit that grows on trees. Apples can be red, green, or yellow and taste sweet or sour.",
			Advanced:     "A round fruit with red, green, or yellow skin that grows on apple trees and is commonly eaten fresh or used in cooking.",
			Example:      "I ate a red apple for snack.",
			Visual:       single(),
		}},
	},
	{
		Word: "dog", Pronunciation: "DAWG",
		ImageURL: imageHost + "1759660091838_5c5e3257.webp",
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "noun",
			Simple:       "An animal that barks. Dogs are pets.",
			Medium:       "A furry animal with four legs that people keep as pets. Dogs bark and wag their tails.",
			Advanced:     "A domesticated carnivorous mammal that is commonly kept as a pet or working animal, known for loyalty and companionship.",
			Example:      "My dog loves to play fetch.",
			Visual:       single(),
		}},
	},
	{
		Word: "jump", Pronunciation: "JUMP",
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "verb",
			Simple:       "Push your feet off the ground and go up in the air.",
			Medium:       "To push yourself up into the air using your legs and feet.",
			Advanced:     "To propel oneself off the ground by pushing forcefully with the legs and feet.",
			Example:      "I can jump over the puddle.",
			Visual:       comic("a child bending their knees next to a puddle", "the child in the air above the puddle", "the child landing on the other side"),
		}},
	},
	{
		Word: "friend", Pronunciation: "FREND",
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "noun",
			Simple:       "Someone you like and who likes you. You play together.",
			Medium:       "A person you like to spend time with and who cares about you.",
			Advanced:     "A person with whom one has a bond of mutual affection and trust.",
			Example:      "My best friend and I play at recess.",
			Visual:       single(),
		}},
	},
	{
		Word: "big", Pronunciation: "BIG",
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "adjective",
			Simple:       "Very large. Not small.",
			Medium:       "Something that is large in size, bigger than other things.",
			Advanced:     "Of considerable size, extent, or intensity; large in dimensions.",
			Example:      "The elephant is a big animal.",
			Visual:       single(),
		}},
	},
	{
		Word: "read", Pronunciation: "REED",
		ImageURL: imageHost + "1759660092531_34fd1f58.webp",
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "verb",
			Simple:       "Look at words and know what they say.",
			Medium:       "To look at written words and understand what they mean.",
			Advanced:     "To interpret written or printed words and comprehend their meaning.",
			Example:      "I like to read books about dinosaurs.",
			Visual:       comic("a child picking a book from a shelf", "the child opening the book", "the child smiling while reading"),
		}},
	},
	{
		Word: "laugh", Pronunciation: "LAF",
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "verb",
			Simple:       "Make sounds when something is funny. Ha ha ha!",
			Medium:       "To make sounds with your voice when something is funny or makes you happy.",
			Advanced:     "To express amusement or joy through vocal sounds and facial expressions.",
			Example:      "The joke made everyone laugh.",
			Visual:       comic("a child telling a joke", "friends listening", "everyone laughing together"),
		}},
	},
	{
		Word: "kind", Pronunciation: "KYND",
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "adjective",
			Simple:       "Nice to others. You help people and are friendly.",
			Medium:       "Being friendly, helpful, and caring toward other people.",
			Advanced:     "Having a gentle, caring, and considerate nature toward others.",
			Example:      "She was kind and shared her crayons with me.",
			Visual:       single(),
		}},
	},
}

var specialEntries = []domain.WordEntry{
	{
		Word: "boom", Pronunciation: "BOOM", Category: domain.CategorySound,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "sound word",
			Simple:       "A big, loud sound. Like a drum or thunder.",
			Medium:       "A word for a deep, loud sound, like thunder or a firework going off.",
			Advanced:     "An onomatopoeic word imitating a deep, resonant, explosive sound.",
			Example:      "Boom! The fireworks lit up the sky.",
			Visual:       silent(),
		}},
	},
	{
		Word: "splash", Pronunciation: "SPLASH", Category: domain.CategorySound,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "sound word",
			Simple:       "The sound water makes when something falls in.",
			Medium:       "A word for the sound of water being hit or thrown around.",
			Advanced:     "An onomatopoeic word for the sound of liquid striking or being scattered.",
			Example:      "Splash! The frog jumped into the pond.",
			Visual:       silent(),
		}},
	},
	{
		Word: "buzz", Pronunciation: "BUHZ", Category: domain.CategorySound,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "sound word",
			Simple:       "The sound a bee makes.",
			Medium:       "A word for the low humming sound that bees and some machines make.",
			Advanced:     "An onomatopoeic word for a continuous low vibrating or humming sound.",
			Example:      "The bee went buzz around the flowers.",
			Visual:       silent(),
		}},
	},
	{
		Word: "meow", Pronunciation: "mee-OW", Category: domain.CategorySound,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "sound word",
			Simple:       "The sound a cat makes.",
			Medium:       "A word for the crying sound a cat makes when it wants something.",
			Advanced:     "An onomatopoeic word imitating the characteristic cry of a domestic cat.",
			Example:      "My cat says meow when she is hungry.",
			Visual:       silent(),
		}},
	},
	{
		Word: "sneetches", Pronunciation: "SNEE-chez", Category: domain.CategoryInvented,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "made-up word",
			Simple:       "Funny yellow birds from a Dr. Seuss book.",
			Medium:       "Made-up creatures from a Dr. Seuss story. Some have stars on their bellies and some do not.",
			Advanced:     "Fictional creatures invented by Dr. Seuss to tell a story about how silly it is to judge others by how they look.",
			Example:      "The Sneetches learned that stars do not matter.",
			Visual:       single(),
		}},
	},
	{
		Word: "lorax", Pronunciation: "LOR-aks", Category: domain.CategoryInvented,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "made-up word",
			Simple:       "A small orange creature who speaks for the trees.",
			Medium:       "A made-up character from a Dr. Seuss book who tries to protect the trees.",
			Advanced:     "A fictional character created by Dr. Seuss who stands for caring about nature and the environment.",
			Example:      "The Lorax speaks for the trees.",
			Visual:       single(),
		}},
	},
	{
		Word: "grinch", Pronunciation: "GRINCH", Category: domain.CategoryInvented,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "made-up word",
			Simple:       "A grumpy green character who did not like holidays.",
			Medium:       "A made-up green character from a Dr. Seuss book who learns to be kind.",
			Advanced:     "A fictional character by Dr. Seuss; today people also call a grumpy, unfriendly person a grinch.",
			Example:      "The Grinch's heart grew three sizes that day.",
			Visual:       single(),
		}},
	},
	{
		Word: "hola", Pronunciation: "OH-lah", Category: domain.CategoryForeign,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "Spanish word",
			Simple:       "How you say hello in Spanish.",
			Medium:       "A Spanish word that means hello. People say it when they meet.",
			Advanced:     "A Spanish greeting equivalent to the English word hello.",
			Example:      "Hola, amigo! How are you?",
			Visual:       single(),
		}},
	},
	{
		Word: "bonjour", Pronunciation: "bohn-ZHOOR", Category: domain.CategoryForeign,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "French word",
			Simple:       "How you say hello in French.",
			Medium:       "A French word that means hello or good day.",
			Advanced:     "A French greeting meaning good day, used as a polite hello.",
			Example:      "Bonjour! said the baker in Paris.",
			Visual:       single(),
		}},
	},
	{
		Word: "gracias", Pronunciation: "GRAH-see-ahs", Category: domain.CategoryForeign,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "Spanish word",
			Simple:       "How you say thank you in Spanish.",
			Medium:       "A Spanish word that means thank you.",
			Advanced:     "A Spanish expression of gratitude equivalent to thank you.",
			Example:      "Gracias for the present!",
			Visual:       single(),
		}},
	},
}

var spellSuggestions = map[string]string{
	"aple":   "apple",
	"appl":   "apple",
	"happi":  "happy",
	"hapy":   "happy",
	"runn":   "run",
	"doog":   "dog",
	"dawg":   "dog",
	"frend":  "friend",
	"freind": "friend",
	"bigg":   "big",
	"reed":   "read",
	"laff":   "laugh",
	"laf":    "laugh",
	"jum":    "jump",
	"kynd":   "kind",
}
