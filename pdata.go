// Package pdata provides a uniform key/value data API for Dragonfly servers.
//
// Players and other entities keep their state in native fields pdata does not
// own. pdata puts a typed data layer on top of them:
//   - Keys name a semantic property and carry its value type
//   - Traits group keys that are read and written together
//   - Manipulators are detached bags of values for one trait
//   - Processors bridge a trait to the native fields of a holder
//   - A Registry dispatches reads and writes to the right processor
//   - Sessions, handlers and stores connect it all to Dragonfly players
//
// # Quick Start
//
// Initialize pdata in your server setup:
//
//	db, err := store.OpenSQLite("pdata.db")
//	if err != nil {
//	    panic(err)
//	}
//	defer db.Close()
//
//	mngr := pdata.NewBuilder().
//	    Bundle(pdata.VanillaBundle().Build()).
//	    Store(db).
//	    Init()
//
//	for p := range srv.Accept() {
//	    sess, err := mngr.NewSession(p)
//	    if err != nil {
//	        p.Disconnect("failed to load player data")
//	        continue
//	    }
//	    p.Handle(pdata.NewHandler(sess, nil))
//	}
//
// # Reading and writing
//
// All writes are transactions: either every value is applied or none is,
// and the outcome is reported as a TransactionResult:
//
//	r := mngr.Registry()
//	h := sess.Holder(p)
//
//	health, _ := pdata.GetValue(r, h, pdata.KeyHealth)
//	res := pdata.OfferValue(r, h, pdata.KeyHealthScale, 40)
//	if !res.IsSuccessful() {
//	    // res.Rejected() holds the values that were not applied
//	}
//
// Whole traits are read and written as manipulators:
//
//	m, _ := r.Get(h, pdata.TraitExperience)
//	_ = pdata.Set(m, pdata.KeyExperienceLevel, 30)
//	r.Offer(h, m, pdata.KeepReplacement)
//
// # Listeners
//
// Pre-change listeners see every change before it happens, whether it comes
// from an offer or from the game itself, and may cancel it:
//
//	r.OnOffer(pdata.KeySneaking, func(e *pdata.OfferEvent) {
//	    e.Cancel()
//	})
//
// # Custom data
//
// New traits are added by declaring keys and a trait and registering a
// processor for them, usually a FieldProcessor over an accessor interface:
//
//	var (
//	    KeyMana   = pdata.NewKey[int]("mana")
//	    TraitMana = pdata.NewTrait("mana", pdata.Default(KeyMana, 100))
//	)
//
//	pdata.NewBundle("magic").Processor(pdata.NewFieldProcessor(TraitMana, pdata.FieldConfig[ManaHolder]{...}))
//
// # Persistence
//
// When a Store is configured, a player's traits are loaded when the session
// is created and saved when the player quits or the manager shuts down.
// Data is kept as a Container, which encodes to NBT, YAML and JSON.
package pdata
