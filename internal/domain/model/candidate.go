package model

type Candidate struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Age        int      `json:"age" yaml:"age"`
	Photos     []string `json:"photos" yaml:"photos"`
	Bio        string   `json:"bio" yaml:"bio"`
	DistanceKM float64  `json:"distance_km" yaml:"distance_km"`
	Location   string   `json:"location" yaml:"location"`
	Reason     string   `json:"reason" yaml:"reason"`
	Interests  []string `json:"interests" yaml:"interests"`
}

// PrimaryPhoto returns the first photo reference; candidates always carry at least one.
func (c Candidate) PrimaryPhoto() string {
	if len(c.Photos) == 0 {
		return ""
	}
	return c.Photos[0]
}
