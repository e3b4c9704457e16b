package models

// Breed is a catalog breed.
type Breed struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Pet is an owned pet as returned by the backend.
type Pet struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Age             int    `json:"age"`
	BreedID         int    `json:"breed_id"`
	OwnerID         int    `json:"owner_id,omitempty"`
	Recommendations string `json:"recommendations,omitempty"`
}

// PetInput is the POST /pets/ and PUT /pets/{id} body.
type PetInput struct {
	Name            string `json:"name"`
	Age             int    `json:"age"`
	BreedID         int    `json:"breed_id"`
	Recommendations string `json:"recommendations,omitempty"`
}

// BreedName looks a breed up by id, returning "-" when unknown.
func BreedName(breeds []Breed, id int) string {
	for _, b := range breeds {
		if b.ID == id {
			return b.Name
		}
	}
	return "-"
}

// PetName looks a pet up by id, returning "-" when unknown.
func PetName(pets []Pet, id int) string {
	for _, p := range pets {
		if p.ID == id {
			return p.Name
		}
	}
	return "-"
}
