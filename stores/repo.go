package stores

type Repo interface {
	Create(store *Store) error
	Update(store *Store) error
	Delete(id int64) error
	Get(id int64) (*Store, error)
	GetBySubdomain(subdomain string) (*Store, error)
	ListByUser(userID int64) ([]*Store, error)
	List(offset, limit int) ([]*Store, error)
}
