package schema

// DefaultCatalog returns the plasmid database catalog: environments, genes,
// hosts and plasmids.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(
		Collection{Name: "environments", Fields: []Field{
			{Path: "_id", Type: ObjectID, Description: "Unique identifier for the environment document."},
			{Path: "name", Type: String, Description: "Name of the environment."},
		}},
		Collection{Name: "genes", Fields: []Field{
			{Path: "_id", Type: ObjectID, Description: "Unique identifier for the gene document."},
			{Path: "aa_sequence", Type: String, Description: "Amino acid sequence of the gene."},
			{Path: "antibiotic_resistance", Type: Boolean, Description: "Indicates if the gene confers antibiotic resistance."},
			{Path: "contig", Type: String, Description: "Contig information."},
			{Path: "gene_id", Type: String, Description: "Identifier of the gene."},
			{Path: "gene_name", Type: String, Description: "Name of the gene."},
			{Path: "locus", Type: String, Description: "Locus information."},
			{Path: "nt_sequence", Type: String, Description: "Nucleotide sequence of the gene."},
			{Path: "plasmid_id", Type: ObjectID, Description: "Reference to the associated plasmid (`_id` from the `plasmids` collection)."},
			{Path: "product", Type: String, Description: "Product of the gene.", Hint: "this is the field to use when asking for a product"},
			{Path: "resistance_info", Type: Object, Description: "Contains resistance information such as:"},
			{Path: "resistance_info.alignment_length", Type: String, Description: "Length of the alignment."},
			{Path: "resistance_info.coverage", Type: Double, Description: "Coverage percentage (Double)."},
			{Path: "resistance_info.gene_name", Type: String, Description: "Name of the resistance gene."},
			{Path: "resistance_info.identity", Type: Double, Description: "Identity percentage (Double)."},
			{Path: "resistance_info.resistance_to", Type: String, Array: true, Description: "List of antibiotics the gene provides resistance to."},
			{Path: "start", Type: Int32, Description: "Start position of the gene (Int32)."},
			{Path: "stop", Type: Int32, Description: "Stop position of the gene (Int32)."},
			{Path: "strand", Type: String, Description: "Strand information."},
		}},
		Collection{Name: "hosts", Fields: []Field{
			{Path: "_id", Type: ObjectID, Description: "Unique identifier for the host document."},
			{Path: "environment_ids", Type: ObjectID, Array: true, Description: "List of environment IDs associated with the host."},
			{Path: "family", Type: String, Description: "Family classification."},
			{Path: "genus", Type: String, Description: "Genus classification."},
			{Path: "species", Type: String, Description: "Species classification."},
		}},
		Collection{Name: "plasmids", Fields: []Field{
			{Path: "_id", Type: ObjectID, Description: "Unique identifier for the plasmid document."},
			{Path: "assembly_accession", Type: String, Description: "Assembly accession number."},
			{Path: "assembly_status", Type: String, Description: "Status of the assembly."},
			{Path: "environment_id", Type: ObjectID, Description: "Reference to the associated environment (`_id` from the `environments` collection)."},
			{Path: "host_id", Type: ObjectID, Description: "Reference to the associated host (`_id` from the `hosts` collection)."},
			{Path: "mobility", Type: String, Description: "Mobility information."},
			{Path: "plasmid_id", Type: String, Description: "Identifier of the plasmid."},
			{Path: "replicon_type", Type: String, Description: "Type of replicon."},
			{Path: "sequence", Type: String, Description: "DNA sequence of the plasmid."},
			{Path: "sequence_length", Type: Int32, Description: "Length of the plasmid sequence (Int32)."},
		}},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Explanation is the text shown next to the catalog for people writing queries
// by hand or with their own model.
const Explanation = "This is the database schema (i.e., what is in the database and how it is related). " +
	"This may come in handy if you're trying to make complex queries. Feel free to use it as a prompt " +
	"if you are using a Large Language Model (LLM) to help you make queries."
