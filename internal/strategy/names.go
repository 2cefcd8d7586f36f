package strategy

// Name pools for RANDOM_NAME_STRATEGY. Entries are lower-case; case
// formatting is applied on output.
var (
	maleFirstNames = []string{
		"james", "john", "robert", "michael", "william", "david", "richard", "joseph",
		"thomas", "charles", "christopher", "daniel", "matthew", "anthony", "mark",
		"donald", "steven", "paul", "andrew", "joshua", "kenneth", "kevin", "brian",
		"george", "timothy", "ronald", "edward", "jason", "jeffrey", "ryan", "jacob",
		"gary", "nicholas", "eric", "jonathan", "stephen", "larry", "justin", "scott",
		"brandon", "benjamin", "samuel", "gregory", "alexander", "frank", "patrick",
		"raymond", "jack", "dennis", "jerry",
	}
	femaleFirstNames = []string{
		"mary", "patricia", "jennifer", "linda", "elizabeth", "barbara", "susan",
		"jessica", "sarah", "karen", "lisa", "nancy", "betty", "margaret", "sandra",
		"ashley", "kimberly", "emily", "donna", "michelle", "carol", "amanda",
		"dorothy", "melissa", "deborah", "stephanie", "rebecca", "sharon", "laura",
		"cynthia", "kathleen", "amy", "angela", "shirley", "anna", "brenda", "pamela",
		"emma", "nicole", "helen", "samantha", "katherine", "christine", "debra",
		"rachel", "carolyn", "janet", "catherine", "maria", "heather",
	}
	lastNames = []string{
		"smith", "johnson", "williams", "brown", "jones", "garcia", "miller", "davis",
		"rodriguez", "martinez", "hernandez", "lopez", "gonzalez", "wilson",
		"anderson", "thomas", "taylor", "moore", "jackson", "martin", "lee", "perez",
		"thompson", "white", "harris", "sanchez", "clark", "ramirez", "lewis",
		"robinson", "walker", "young", "allen", "king", "wright", "scott", "torres",
		"nguyen", "hill", "flores", "green", "adams", "nelson", "baker", "hall",
		"rivera", "campbell", "mitchell", "carter", "roberts",
	}
)
