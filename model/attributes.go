package model

// Attribute names as used in JSON payloads and class primary attributes.
const (
	AttrStrength     = "strength"
	AttrDexterity    = "dexterity"
	AttrConstitution = "constitution"
	AttrIntelligence = "intelligence"
	AttrWisdom       = "wisdom"
	AttrCharisma     = "charisma"
)

// AttributeNames lists the six attributes in canonical order.
var AttributeNames = []string{
	AttrStrength, AttrDexterity, AttrConstitution,
	AttrIntelligence, AttrWisdom, AttrCharisma,
}

// Attributes holds the six ability scores. Embedded into Character it maps to
// six plain columns.
type Attributes struct {
	Strength     int `gorm:"not null" json:"strength"`
	Dexterity    int `gorm:"not null" json:"dexterity"`
	Constitution int `gorm:"not null" json:"constitution"`
	Intelligence int `gorm:"not null" json:"intelligence"`
	Wisdom       int `gorm:"not null" json:"wisdom"`
	Charisma     int `gorm:"not null" json:"charisma"`
}

// Get returns the named score.
func (a Attributes) Get(name string) (int, bool) {
	switch name {
	case AttrStrength:
		return a.Strength, true
	case AttrDexterity:
		return a.Dexterity, true
	case AttrConstitution:
		return a.Constitution, true
	case AttrIntelligence:
		return a.Intelligence, true
	case AttrWisdom:
		return a.Wisdom, true
	case AttrCharisma:
		return a.Charisma, true
	}
	return 0, false
}

// Values returns the scores in AttributeNames order.
func (a Attributes) Values() []int {
	return []int{a.Strength, a.Dexterity, a.Constitution, a.Intelligence, a.Wisdom, a.Charisma}
}

// Plus adds b component-wise.
func (a Attributes) Plus(b Attributes) Attributes {
	return Attributes{
		Strength:     a.Strength + b.Strength,
		Dexterity:    a.Dexterity + b.Dexterity,
		Constitution: a.Constitution + b.Constitution,
		Intelligence: a.Intelligence + b.Intelligence,
		Wisdom:       a.Wisdom + b.Wisdom,
		Charisma:     a.Charisma + b.Charisma,
	}
}

func (a Attributes) Total() int {
	sum := 0
	for _, v := range a.Values() {
		sum += v
	}
	return sum
}
